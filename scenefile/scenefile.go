// Package scenefile reads scene descriptions from YAML and spawns them into a
// scene.
//
//	entities:
//	  - model: cube.obj
//	    position: [0, 0, 0]
//	  - model: sphere.obj
//	    position: [-3, 0, 0]
//	    count: 4
//	    spacing: [2, 0, 0]
package scenefile

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/vengine/ecs"
	"github.com/plus3/vengine/graphics"
	"gopkg.in/yaml.v3"
)

// Entry describes one entity, or a row of Count entities each offset by
// Spacing from the previous one.
type Entry struct {
	Model    string      `yaml:"model"`
	Position [3]float32  `yaml:"position"`
	Rotation [3]float32  `yaml:"rotation"`
	Scale    *[3]float32 `yaml:"scale"` // defaults to 1,1,1
	Count    int         `yaml:"count"`
	Spacing  [3]float32  `yaml:"spacing"`
}

type File struct {
	Entities []Entry `yaml:"entities"`
}

// Models reports whether a model name can be loaded.
type Models interface {
	Has(name string) bool
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}
	return f, nil
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	for i, e := range f.Entities {
		if e.Model == "" {
			return nil, fmt.Errorf("entity %d: model is required", i)
		}
		if e.Count < 0 {
			return nil, fmt.Errorf("entity %d: negative count %d", i, e.Count)
		}
	}
	return &f, nil
}

// Check verifies that every referenced model is known.
func (f *File) Check(models Models) error {
	var errs []error
	for i, e := range f.Entities {
		if !models.Has(e.Model) {
			errs = append(errs, fmt.Errorf("entity %d: unknown model %q", i, e.Model))
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of entities Spawn creates.
func (f *File) Len() int {
	n := 0
	for _, e := range f.Entities {
		n += max(e.Count, 1)
	}
	return n
}

// Spawn creates and initializes one entity per described instance, in file
// order. Each gets a Transform and a Graphics component.
func (f *File) Spawn(scene *ecs.Scene) []*ecs.Entity {
	entities := make([]*ecs.Entity, 0, f.Len())
	for _, entry := range f.Entities {
		scale := mgl32.Vec3{1, 1, 1}
		if entry.Scale != nil {
			scale = mgl32.Vec3(*entry.Scale)
		}
		position := mgl32.Vec3(entry.Position)
		step := mgl32.Vec3(entry.Spacing)

		for i := range max(entry.Count, 1) {
			e := scene.CreateEntity()
			ecs.Add(e, graphics.Transform{
				Position: position.Add(step.Mul(float32(i))),
				Rotation: mgl32.Vec3(entry.Rotation),
				Scale:    scale,
			})
			ecs.Add(e, graphics.Graphics{Model: entry.Model})
			entities = append(entities, e)
		}
	}

	for _, e := range entities {
		scene.Init(e)
	}
	return entities
}
