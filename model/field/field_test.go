package field

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestScalarConstraints(t *testing.T) {
	testCases := []struct {
		description string
		field       Field
		value       interface{}
		constraint  string
	}{
		{
			description: "string within bounds",
			field:       &String{name: "prompt", MinLength: intPtr(1), MaxLength: intPtr(32)},
			value:       "a lighthouse",
		},
		{
			description: "string below minimum length",
			field:       &String{name: "prompt", MinLength: intPtr(4)},
			value:       "hi",
			constraint:  "min_length",
		},
		{
			description: "string above maximum length",
			field:       &String{name: "prompt", MaxLength: intPtr(3)},
			value:       "too long",
			constraint:  "max_length",
		},
		{
			description: "string type mismatch",
			field:       NewString("prompt"),
			value:       42,
			constraint:  "type",
		},
		{
			description: "integer within bounds",
			field:       &Integer{name: "steps", Minimum: intPtr(1), Maximum: intPtr(100)},
			value:       30,
		},
		{
			description: "integer below minimum",
			field:       &Integer{name: "steps", Minimum: intPtr(1)},
			value:       0,
			constraint:  "minimum",
		},
		{
			description: "integer above maximum",
			field:       &Integer{name: "steps", Maximum: intPtr(50)},
			value:       51,
			constraint:  "maximum",
		},
		{
			description: "integral float64 accepted",
			field:       NewInteger("steps"),
			value:       float64(25),
		},
		{
			description: "fractional float64 rejected",
			field:       NewInteger("steps"),
			value:       25.5,
			constraint:  "type",
		},
		{
			description: "float within bounds",
			field:       &Float{name: "cfg", Minimum: floatPtr(1), Maximum: floatPtr(20)},
			value:       7.5,
		},
		{
			description: "float widens from int",
			field:       NewFloat("cfg"),
			value:       7,
		},
		{
			description: "float below minimum",
			field:       &Float{name: "cfg", Minimum: floatPtr(1)},
			value:       0.5,
			constraint:  "minimum",
		},
		{
			description: "boolean accepts bool only",
			field:       NewBoolean("tiled"),
			value:       "true",
			constraint:  "type",
		},
	}

	for _, testCase := range testCases {
		err := testCase.field.Set(testCase.value)
		if testCase.constraint == "" {
			assert.Nil(t, err, testCase.description)
			_, set := testCase.field.Value()
			assert.True(t, set, testCase.description)
			continue
		}
		if !assert.NotNil(t, err, testCase.description) {
			continue
		}
		verr, ok := err.(*ValidationError)
		if assert.True(t, ok, testCase.description) {
			assert.EqualValues(t, testCase.constraint, verr.Constraint, testCase.description)
		}
		_, set := testCase.field.Value()
		assert.False(t, set, testCase.description)
	}
}

func TestFailedSetPreservesValue(t *testing.T) {
	steps := &Integer{name: "steps", Maximum: intPtr(50)}
	assert.Nil(t, steps.Set(30))
	err := steps.Set(60)
	assert.NotNil(t, err)
	value, set := steps.Value()
	assert.True(t, set)
	assert.EqualValues(t, 30, value)
}

func TestIntegerOverflowingFloat(t *testing.T) {
	testCases := []struct {
		description string
		value       float64
	}{
		{description: "huge positive", value: 1e30},
		{description: "huge negative", value: -1e30},
		{description: "just past the integer range", value: 9.3e18},
	}
	for _, testCase := range testCases {
		steps := &Integer{name: "steps", Maximum: intPtr(1000)}
		err := steps.Set(testCase.value)
		if !assert.NotNil(t, err, testCase.description) {
			continue
		}
		verr, ok := err.(*ValidationError)
		if assert.True(t, ok, testCase.description) {
			assert.EqualValues(t, "range", verr.Constraint, testCase.description)
		}
		_, set := steps.Value()
		assert.False(t, set, testCase.description)
	}

	// the extremes of the representable range still convert
	within := NewInteger("steps")
	assert.Nil(t, within.Set(float64(math.MinInt64)))
	value, _ := within.Value()
	assert.EqualValues(t, math.MinInt64, value)
}

func TestWireRoundTrip(t *testing.T) {
	testCases := []struct {
		description string
		kind        Kind
		value       interface{}
		wire        interface{}
	}{
		{
			description: "string",
			kind:        KindString,
			value:       "a red fox",
			wire:        "a red fox",
		},
		{
			description: "integer",
			kind:        KindInteger,
			value:       512,
			wire:        512,
		},
		{
			description: "float",
			kind:        KindFloat,
			value:       7.5,
			wire:        7.5,
		},
		{
			description: "boolean",
			kind:        KindBoolean,
			value:       true,
			wire:        true,
		},
		{
			description: "image",
			kind:        KindImage,
			value:       ImageRef{ImageName: "a1.png"},
			wire:        map[string]interface{}{"image_name": "a1.png"},
		},
		{
			description: "board",
			kind:        KindBoard,
			value:       BoardRef{BoardID: "none"},
			wire:        map[string]interface{}{"board_id": "none"},
		},
		{
			description: "color",
			kind:        KindColor,
			value:       RGBA{R: 10, G: 20, B: 30, A: 255},
			wire:        map[string]interface{}{"r": 10, "g": 20, "b": 30, "a": 255},
		},
		{
			description: "bounding box",
			kind:        KindBoundingBox,
			value:       Box{XMin: 0, XMax: 64, YMin: 8, YMax: 128},
			wire:        map[string]interface{}{"x_min": 0, "x_max": 64, "y_min": 8, "y_max": 128},
		},
		{
			description: "model identifier",
			kind:        KindModelIdentifier,
			value:       ModelRef{Key: "k1", Hash: "h1", Name: "juggernaut", Base: "sdxl", Type: "main"},
			wire: map[string]interface{}{
				"key":  "k1",
				"hash": "h1",
				"name": "juggernaut",
				"base": "sdxl",
				"type": "main",
			},
		},
	}

	for _, testCase := range testCases {
		original, err := New(testCase.kind, "value")
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		assert.Nil(t, original.Set(testCase.value), testCase.description)
		wire := original.ToWire()
		assert.EqualValues(t, testCase.wire, wire, testCase.description)

		restored, _ := New(testCase.kind, "value")
		assert.Nil(t, restored.FromWire(wire), testCase.description)
		restoredValue, set := restored.Value()
		assert.True(t, set, testCase.description)
		originalValue, _ := original.Value()
		assert.EqualValues(t, originalValue, restoredValue, testCase.description)
	}

	// collections carry an element kind, so they round-trip outside the table
	original := NewCollection("value", KindString)
	assert.Nil(t, original.Set([]interface{}{"a fox", "a castle"}))
	wire := original.ToWire()
	assert.EqualValues(t, []interface{}{"a fox", "a castle"}, wire)
	restored := NewCollection("value", KindString)
	assert.Nil(t, restored.FromWire(wire))
	restoredValue, _ := restored.Value()
	originalValue, _ := original.Value()
	assert.EqualValues(t, originalValue, restoredValue)
}

func TestUnsetToWire(t *testing.T) {
	for _, kind := range []Kind{KindString, KindInteger, KindFloat, KindBoolean, KindImage, KindBoard, KindModelIdentifier, KindColor, KindBoundingBox} {
		unset, err := New(kind, "value")
		if !assert.Nil(t, err, string(kind)) {
			continue
		}
		assert.Nil(t, unset.ToWire(), string(kind))
		assert.Nil(t, unset.FromWire(nil), string(kind))
	}
	// collections wire as an empty slice, never null
	collection := NewCollection("images", KindImage)
	assert.EqualValues(t, []interface{}{}, collection.ToWire())
}

func TestImageSetVariants(t *testing.T) {
	image := NewImage("image")
	assert.Nil(t, image.Set("a1.png"))
	assert.Nil(t, image.Set(&ImageRef{ImageName: "b2.png"}))
	assert.Nil(t, image.Set(map[string]interface{}{"image_name": "c3.png"}))
	value, set := image.Value()
	assert.True(t, set)
	assert.EqualValues(t, ImageRef{ImageName: "c3.png"}, value)
	assert.NotNil(t, image.Set(42))
}

func TestModelIdentifier(t *testing.T) {
	identifier := NewModelIdentifier("model")
	err := identifier.Set(map[string]interface{}{"base": "sdxl"})
	assert.NotNil(t, err, "a model identifier needs a key or a name")

	assert.Nil(t, identifier.Set(ModelRef{Name: "juggernaut", Base: "sdxl", Type: "main"}))
	ref := identifier.Ref()
	if assert.NotNil(t, ref) {
		ref.Key = "k-123"
		wire, ok := identifier.ToWire().(map[string]interface{})
		if assert.True(t, ok) {
			assert.EqualValues(t, "k-123", wire["key"])
		}
	}
}

func TestColorRange(t *testing.T) {
	color := NewColor("color")
	err := color.Set(RGBA{R: 300})
	if assert.NotNil(t, err) {
		assert.EqualValues(t, "range", err.(*ValidationError).Constraint)
	}
	assert.Nil(t, color.Set(RGBA{R: 255, A: 255}))
}

func TestBoundingBoxRange(t *testing.T) {
	box := NewBoundingBox("region")
	err := box.Set(Box{XMin: 10, XMax: 5, YMin: 0, YMax: 5})
	if assert.NotNil(t, err) {
		assert.EqualValues(t, "range", err.(*ValidationError).Constraint)
	}
	assert.Nil(t, box.Set(Box{XMin: 0, XMax: 5, YMin: 0, YMax: 5}))
}

func TestCollection(t *testing.T) {
	collection := NewCollection("prompts", KindString)
	assert.Nil(t, collection.Append("first"))
	assert.Nil(t, collection.Append("second"))
	assert.EqualValues(t, 2, collection.Len())

	err := collection.Append(42)
	if assert.NotNil(t, err) {
		assert.EqualValues(t, "element_type", err.(*ValidationError).Constraint)
	}
	assert.EqualValues(t, 2, collection.Len(), "failed append leaves content untouched")

	assert.Nil(t, collection.Remove(0))
	assert.EqualValues(t, []interface{}{"second"}, collection.ToWire())
	assert.NotNil(t, collection.Remove(5))

	collection.Clear()
	assert.EqualValues(t, 0, collection.Len())
}

func TestCollectionSetAtomic(t *testing.T) {
	collection := NewCollection("steps", KindInteger)
	assert.Nil(t, collection.Set([]interface{}{1, 2, 3}))
	err := collection.Set([]interface{}{4, "five", 6})
	assert.NotNil(t, err)
	assert.EqualValues(t, []interface{}{1, 2, 3}, collection.ToWire(), "failed Set preserves previous content")
}

func TestCollectionLengthBounds(t *testing.T) {
	collection := NewCollection("images", KindImage)
	collection.MinLength = intPtr(1)
	collection.MaxLength = intPtr(2)

	assert.Nil(t, collection.Append("a.png"))
	assert.Nil(t, collection.Append("b.png"))
	err := collection.Append("c.png")
	if assert.NotNil(t, err) {
		assert.EqualValues(t, "max_length", err.(*ValidationError).Constraint)
	}
	assert.Nil(t, collection.Remove(0))
	err = collection.Remove(0)
	if assert.NotNil(t, err) {
		assert.EqualValues(t, "min_length", err.(*ValidationError).Constraint)
	}
}

func TestCollectionIterator(t *testing.T) {
	collection := NewCollection("prompts", KindString)
	for _, value := range []string{"a", "b", "c"} {
		assert.Nil(t, collection.Append(value))
	}
	iterator := collection.Iterator()
	var visited []interface{}
	for item := iterator.Next(); item != nil; item = iterator.Next() {
		// mutation during iteration must not disturb the snapshot
		collection.Clear()
		value, _ := item.Value()
		visited = append(visited, value)
	}
	assert.EqualValues(t, []interface{}{"a", "b", "c"}, visited)

	iterator.Reset()
	assert.NotNil(t, iterator.Next())
}
