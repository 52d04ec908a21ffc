package field

import (
	"github.com/viant/toolbox"
)

// RGBA is an 8-bit-per-channel color value.
type RGBA struct {
	R int `json:"r" name:"r"`
	G int `json:"g" name:"g"`
	B int `json:"b" name:"b"`
	A int `json:"a" name:"a"`
}

// Color holds an RGBA color with channels constrained to 0..255.
type Color struct {
	name  string
	value *RGBA
}

// NewColor creates an unset color field.
func NewColor(name string) *Color {
	return &Color{name: name}
}

func (f *Color) Kind() Kind   { return KindColor }
func (f *Color) Name() string { return f.name }

func (f *Color) Value() (interface{}, bool) {
	if f.value == nil {
		return nil, false
	}
	return *f.value, true
}

func (f *Color) Set(value interface{}) error {
	var color RGBA
	switch v := value.(type) {
	case RGBA:
		color = v
	case *RGBA:
		color = *v
	default:
		if err := toolbox.DefaultConverter.AssignConverted(&color, value); err != nil {
			return validationError(f.name, "type", "expected color, got %T", value)
		}
	}
	if err := f.check(color); err != nil {
		return err
	}
	f.value = &color
	return nil
}

func (f *Color) check(color RGBA) error {
	for _, channel := range []struct {
		name  string
		value int
	}{{"r", color.R}, {"g", color.G}, {"b", color.B}, {"a", color.A}} {
		if channel.value < 0 || channel.value > 255 {
			return validationError(f.name, "range", "channel %s value %d outside 0..255", channel.name, channel.value)
		}
	}
	return nil
}

func (f *Color) ToWire() interface{} {
	if f.value == nil {
		return nil
	}
	return map[string]interface{}{
		"r": f.value.R,
		"g": f.value.G,
		"b": f.value.B,
		"a": f.value.A,
	}
}

func (f *Color) FromWire(value interface{}) error {
	if value == nil {
		f.value = nil
		return nil
	}
	return f.Set(value)
}

func (f *Color) Validate() error {
	if f.value == nil {
		return nil
	}
	return f.check(*f.value)
}

// Box is an axis-aligned region in image pixel coordinates.
type Box struct {
	XMin int `json:"x_min" name:"x_min"`
	XMax int `json:"x_max" name:"x_max"`
	YMin int `json:"y_min" name:"y_min"`
	YMax int `json:"y_max" name:"y_max"`
}

// BoundingBox holds a rectangular region; min coordinates must not exceed
// max coordinates.
type BoundingBox struct {
	name  string
	value *Box
}

// NewBoundingBox creates an unset bounding box field.
func NewBoundingBox(name string) *BoundingBox {
	return &BoundingBox{name: name}
}

func (f *BoundingBox) Kind() Kind   { return KindBoundingBox }
func (f *BoundingBox) Name() string { return f.name }

func (f *BoundingBox) Value() (interface{}, bool) {
	if f.value == nil {
		return nil, false
	}
	return *f.value, true
}

func (f *BoundingBox) Set(value interface{}) error {
	var box Box
	switch v := value.(type) {
	case Box:
		box = v
	case *Box:
		box = *v
	default:
		if err := toolbox.DefaultConverter.AssignConverted(&box, value); err != nil {
			return validationError(f.name, "type", "expected bounding box, got %T", value)
		}
	}
	if err := f.check(box); err != nil {
		return err
	}
	f.value = &box
	return nil
}

func (f *BoundingBox) check(box Box) error {
	if box.XMin > box.XMax {
		return validationError(f.name, "range", "x_min %d exceeds x_max %d", box.XMin, box.XMax)
	}
	if box.YMin > box.YMax {
		return validationError(f.name, "range", "y_min %d exceeds y_max %d", box.YMin, box.YMax)
	}
	return nil
}

func (f *BoundingBox) ToWire() interface{} {
	if f.value == nil {
		return nil
	}
	return map[string]interface{}{
		"x_min": f.value.XMin,
		"x_max": f.value.XMax,
		"y_min": f.value.YMin,
		"y_max": f.value.YMax,
	}
}

func (f *BoundingBox) FromWire(value interface{}) error {
	if value == nil {
		f.value = nil
		return nil
	}
	return f.Set(value)
}

func (f *BoundingBox) Validate() error {
	if f.value == nil {
		return nil
	}
	return f.check(*f.value)
}
