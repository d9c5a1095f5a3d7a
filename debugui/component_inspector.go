package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/vengine/ecs"
)

// ComponentInspector shows and edits the components of one entity.
type ComponentInspector struct {
	layouts map[ecs.ComponentId][]Field
}

func NewComponentInspector() *ComponentInspector {
	return &ComponentInspector{layouts: make(map[ecs.ComponentId][]Field)}
}

// Field is an exported struct field the inspector can display.
type Field struct {
	Name    string
	Index   int
	Pointer bool
}

// Fields lists the exported fields of t in declaration order. It returns nil
// when t is not a struct.
func Fields(t reflect.Type) []Field {
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	var fields []Field
	for i := range t.NumField() {
		f := t.Field(i)
		if f.IsExported() {
			fields = append(fields, Field{Name: f.Name, Index: i, Pointer: f.Type.Kind() == reflect.Pointer})
		}
	}
	return fields
}

// Layout returns the fields of the component type registered under id. The
// result is computed once per id.
func (ci *ComponentInspector) Layout(registry *ecs.ComponentRegistry, id ecs.ComponentId) []Field {
	if fields, ok := ci.layouts[id]; ok {
		return fields
	}
	fields := Fields(registry.TypeOf(id))
	ci.layouts[id] = fields
	return fields
}

func (ci *ComponentInspector) Render(scene *ecs.Scene, id ecs.EntityId, selected bool) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	if !selected {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}

	e := scene.Get(id)
	if e == nil {
		imgui.Text(fmt.Sprintf("Entity %d not found", id))
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Entity ID: %d", id))
	imgui.Text(fmt.Sprintf("State: initialized=%t pending=%t", e.Initialized(), e.PendingDestroy()))
	imgui.Separator()

	registry := scene.Registry()
	for _, componentId := range e.ComponentIds() {
		component := e.Component(componentId)
		if component == nil {
			continue
		}
		if imgui.TreeNodeStr(registry.TypeOf(componentId).String()) {
			ci.renderComponent(component, ci.Layout(registry, componentId))
			imgui.TreePop()
		}
	}

	if imgui.Button("Remove Entity") {
		scene.RemoveEntity(e, false)
	}

	imgui.End()
}

func (ci *ComponentInspector) renderComponent(component any, fields []Field) {
	val := reflect.ValueOf(component)
	if val.Kind() == reflect.Pointer {
		val = val.Elem()
	}

	for _, field := range fields {
		fieldVal := val.Field(field.Index)
		if field.Pointer {
			if fieldVal.IsNil() {
				imgui.Text(fmt.Sprintf("%s: nil", field.Name))
				continue
			}
			fieldVal = fieldVal.Elem()
		}
		ci.renderField(field.Name, fieldVal)
	}
}

func (ci *ComponentInspector) renderField(name string, val reflect.Value) {
	if !val.IsValid() {
		imgui.Text(fmt.Sprintf("%s: <invalid>", name))
		return
	}

	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(toInt64(val))
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", name), &v) {
			SetField(val, int64(v))
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(fmt.Sprintf("##%s", name), &v) {
			SetField(val, float64(v))
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(name, &v) {
			SetField(val, v)
		}

	case reflect.String:
		v := val.String()
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(fmt.Sprintf("##%s", name), "", &v, imgui.InputTextFlagsNone, nil) {
			SetField(val, v)
		}

	case reflect.Array:
		// Vectors such as mgl32.Vec3.
		imgui.Text(fmt.Sprintf("%s:", name))
		for i := 0; i < val.Len(); i++ {
			ci.renderField(fmt.Sprintf("%s[%d]", name, i), val.Index(i))
		}

	case reflect.Struct:
		if imgui.TreeNodeStr(name) {
			for _, nf := range Fields(val.Type()) {
				ci.renderField(nf.Name, val.Field(nf.Index))
			}
			imgui.TreePop()
		}

	case reflect.Slice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))

	default:
		if val.CanInterface() {
			imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
		} else {
			imgui.Text(fmt.Sprintf("%s: <%s>", name, val.Kind()))
		}
	}
}

// SetField stores value into field, converting between numeric kinds. It
// reports whether the field was settable and the value compatible. Negative
// values are rejected for unsigned fields.
func SetField(field reflect.Value, value any) bool {
	if !field.CanSet() {
		return false
	}

	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, ok := value.(int64)
		if !ok || field.OverflowInt(v) {
			return false
		}
		field.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, ok := value.(int64)
		if !ok || v < 0 || field.OverflowUint(uint64(v)) {
			return false
		}
		field.SetUint(uint64(v))
	case reflect.Float32, reflect.Float64:
		v, ok := value.(float64)
		if !ok {
			return false
		}
		field.SetFloat(v)
	case reflect.Bool:
		v, ok := value.(bool)
		if !ok {
			return false
		}
		field.SetBool(v)
	case reflect.String:
		v, ok := value.(string)
		if !ok {
			return false
		}
		field.SetString(v)
	default:
		return false
	}
	return true
}

func toInt64(val reflect.Value) int64 {
	switch val.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(val.Uint())
	default:
		return val.Int()
	}
}
