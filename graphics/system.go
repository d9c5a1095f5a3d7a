package graphics

import (
	"github.com/plus3/vengine/asset"
	"github.com/plus3/vengine/ecs"
	"github.com/plus3/vengine/render"
	"go.uber.org/zap"
)

// Drawable is the view the system keeps over entities with a model.
type Drawable struct {
	Graphics  *Graphics
	Transform *Transform `ecs:"optional"`
}

// System provisions GPU models for entities with a Graphics component and
// drives the renderer once per tick.
//
// Models are loaded synchronously when an entity is initialized. They are
// released, after waiting for the GPU to go idle, when the entity is destroyed
// or loses its Graphics component. Event handlers cannot return errors, so the
// first failure is kept and returned from the next Tick.
type System struct {
	Drawables ecs.Query[Drawable]

	renderer *render.Renderer
	loader   *asset.Loader
	log      *zap.Logger
	scene    *ecs.Scene
	err      error
}

func NewSystem(renderer *render.Renderer, loader *asset.Loader, log *zap.Logger) *System {
	if log == nil {
		log = zap.NewNop()
	}
	return &System{
		renderer: renderer,
		loader:   loader,
		log:      log,
	}
}

func (s *System) Init(scene *ecs.Scene) error {
	s.scene = scene
	bus := scene.Bus()

	ecs.Subscribe(bus, s, func(ev ecs.OnEntityCreated) {
		s.log.Debug("entity created", zap.Uint32("entity", uint32(ev.Entity.Id())))
	})
	ecs.Subscribe(bus, s, func(ev ecs.OnEntityInit) {
		s.provision(ev.Entity)
	})
	ecs.Subscribe(bus, s, func(ev ecs.OnEntityDestroyed) {
		s.release(ev.Entity.Id())
	})
	ecs.Subscribe(bus, s, func(ev ecs.OnComponentAssigned[Graphics]) {
		// Replacing the component of a live entity swaps its model.
		if ev.Entity.Initialized() {
			s.provision(ev.Entity)
		}
	})
	ecs.Subscribe(bus, s, func(ev ecs.OnComponentRemoved[Graphics]) {
		s.release(ev.Entity.Id())
	})
	return nil
}

// Tick reloads models whose Graphics component now names a different mesh,
// re-records the command buffers when the model set changed and draws a frame.
func (s *System) Tick(frame *ecs.UpdateFrame) error {
	if s.err != nil {
		return s.err
	}

	for e, d := range s.Drawables.Iter() {
		m := s.renderer.Model(e.Id())
		if m != nil && m.Name != d.Graphics.Model {
			s.provision(e)
		}
	}
	if s.err != nil {
		return s.err
	}

	if s.renderer.Dirty() {
		if err := s.renderer.UpdateCommandBuffers(); err != nil {
			return err
		}
	}
	return s.renderer.DrawFrame()
}

// Shutdown stops listening for scene events and releases every model.
func (s *System) Shutdown() {
	if s.scene != nil {
		s.scene.Bus().UnsubscribeAll(s)
	}
	for _, id := range s.renderer.ModelIds() {
		s.release(id)
	}
}

// Err returns the first provisioning failure, if any.
func (s *System) Err() error {
	return s.err
}

func (s *System) provision(e *ecs.Entity) {
	g := ecs.Get[Graphics](e)
	if g == nil {
		return
	}
	if s.renderer.Model(e.Id()) != nil {
		s.release(e.Id())
	}

	info := asset.ModelCreateInfo{Scale: 1}
	if t := ecs.Get[Transform](e); t != nil {
		info.Center = t.Position
	}

	m, err := s.loader.Load(g.Model, info)
	if err != nil {
		s.log.Error("model provisioning failed",
			zap.Uint32("entity", uint32(e.Id())),
			zap.String("model", g.Model),
			zap.Error(err))
		s.fail(err)
		return
	}

	s.renderer.AddModel(e.Id(), m)
	s.log.Debug("model provisioned",
		zap.Uint32("entity", uint32(e.Id())),
		zap.String("model", g.Model),
		zap.Uint32("indices", m.IndexCount))
}

func (s *System) release(id ecs.EntityId) {
	m := s.renderer.Model(id)
	if m == nil {
		return
	}
	// The model's buffers may still be read by frames in flight.
	if err := s.renderer.WaitIdle(); err != nil {
		s.fail(err)
	}
	m.Release(s.renderer.Device())
	s.renderer.RemoveModel(id)
	s.log.Debug("model released",
		zap.Uint32("entity", uint32(id)),
		zap.String("model", m.Name))
}

func (s *System) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}
