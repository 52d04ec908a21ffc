package field

import (
	"math"

	"github.com/viant/toolbox"
)

// String holds a plain string value with optional length constraints.
type String struct {
	name      string
	MinLength *int
	MaxLength *int
	value     *string
}

// NewString creates an unset string field.
func NewString(name string) *String {
	return &String{name: name}
}

func (f *String) Kind() Kind   { return KindString }
func (f *String) Name() string { return f.name }

func (f *String) Value() (interface{}, bool) {
	if f.value == nil {
		return nil, false
	}
	return *f.value, true
}

func (f *String) Set(value interface{}) error {
	text, ok := value.(string)
	if !ok {
		return validationError(f.name, "type", "expected string, got %T", value)
	}
	if err := f.check(text); err != nil {
		return err
	}
	f.value = &text
	return nil
}

func (f *String) check(text string) error {
	if f.MinLength != nil && len(text) < *f.MinLength {
		return validationError(f.name, "min_length", "length %d below minimum %d", len(text), *f.MinLength)
	}
	if f.MaxLength != nil && len(text) > *f.MaxLength {
		return validationError(f.name, "max_length", "length %d above maximum %d", len(text), *f.MaxLength)
	}
	return nil
}

func (f *String) ToWire() interface{} {
	if f.value == nil {
		return nil
	}
	return *f.value
}

func (f *String) FromWire(value interface{}) error {
	if value == nil {
		f.value = nil
		return nil
	}
	return f.Set(value)
}

func (f *String) Validate() error {
	if f.value == nil {
		return nil
	}
	return f.check(*f.value)
}

// Integer holds an integral value.  Non-integral assignments are rejected
// rather than truncated.
type Integer struct {
	name    string
	Minimum *int
	Maximum *int
	value   *int
}

// NewInteger creates an unset integer field.
func NewInteger(name string) *Integer {
	return &Integer{name: name}
}

func (f *Integer) Kind() Kind   { return KindInteger }
func (f *Integer) Name() string { return f.name }

func (f *Integer) Value() (interface{}, bool) {
	if f.value == nil {
		return nil, false
	}
	return *f.value, true
}

func (f *Integer) Set(value interface{}) error {
	var n int
	switch v := value.(type) {
	case int:
		n = v
	case int32:
		n = int(v)
	case int64:
		n = int(v)
	case float32:
		m, convErr := f.integral(float64(v))
		if convErr != nil {
			return convErr
		}
		n = m
	case float64:
		// JSON numbers decode as float64; only integral ones are accepted.
		m, convErr := f.integral(v)
		if convErr != nil {
			return convErr
		}
		n = m
	default:
		return validationError(f.name, "type", "expected integer, got %T", value)
	}
	if err := f.check(n); err != nil {
		return err
	}
	f.value = &n
	return nil
}

// integral converts a float to int, rejecting fractional values and values
// outside the representable integer range; the int conversion of those is
// undefined and would bypass the declared bounds.
func (f *Integer) integral(v float64) (int, error) {
	if v != math.Trunc(v) {
		return 0, validationError(f.name, "type", "expected integral value, got %v", v)
	}
	if v < math.MinInt64 || v >= math.MaxInt64 {
		return 0, validationError(f.name, "range", "%v overflows the integer range", v)
	}
	return int(v), nil
}

func (f *Integer) check(n int) error {
	if f.Minimum != nil && n < *f.Minimum {
		return validationError(f.name, "minimum", "%d below minimum %d", n, *f.Minimum)
	}
	if f.Maximum != nil && n > *f.Maximum {
		return validationError(f.name, "maximum", "%d above maximum %d", n, *f.Maximum)
	}
	return nil
}

func (f *Integer) ToWire() interface{} {
	if f.value == nil {
		return nil
	}
	return *f.value
}

func (f *Integer) FromWire(value interface{}) error {
	if value == nil {
		f.value = nil
		return nil
	}
	return f.Set(value)
}

func (f *Integer) Validate() error {
	if f.value == nil {
		return nil
	}
	return f.check(*f.value)
}

// Float holds a floating point value.  Integer assignments widen.
type Float struct {
	name    string
	Minimum *float64
	Maximum *float64
	value   *float64
}

// NewFloat creates an unset float field.
func NewFloat(name string) *Float {
	return &Float{name: name}
}

func (f *Float) Kind() Kind   { return KindFloat }
func (f *Float) Name() string { return f.name }

func (f *Float) Value() (interface{}, bool) {
	if f.value == nil {
		return nil, false
	}
	return *f.value, true
}

func (f *Float) Set(value interface{}) error {
	switch value.(type) {
	case int, int32, int64, float32, float64:
	default:
		return validationError(f.name, "type", "expected number, got %T", value)
	}
	n := toolbox.AsFloat(value)
	if err := f.check(n); err != nil {
		return err
	}
	f.value = &n
	return nil
}

func (f *Float) check(n float64) error {
	if f.Minimum != nil && n < *f.Minimum {
		return validationError(f.name, "minimum", "%v below minimum %v", n, *f.Minimum)
	}
	if f.Maximum != nil && n > *f.Maximum {
		return validationError(f.name, "maximum", "%v above maximum %v", n, *f.Maximum)
	}
	return nil
}

func (f *Float) ToWire() interface{} {
	if f.value == nil {
		return nil
	}
	return *f.value
}

func (f *Float) FromWire(value interface{}) error {
	if value == nil {
		f.value = nil
		return nil
	}
	return f.Set(value)
}

func (f *Float) Validate() error {
	if f.value == nil {
		return nil
	}
	return f.check(*f.value)
}

// Boolean holds a true/false value and accepts nothing else.
type Boolean struct {
	name  string
	value *bool
}

// NewBoolean creates an unset boolean field.
func NewBoolean(name string) *Boolean {
	return &Boolean{name: name}
}

func (f *Boolean) Kind() Kind   { return KindBoolean }
func (f *Boolean) Name() string { return f.name }

func (f *Boolean) Value() (interface{}, bool) {
	if f.value == nil {
		return nil, false
	}
	return *f.value, true
}

func (f *Boolean) Set(value interface{}) error {
	flag, ok := value.(bool)
	if !ok {
		return validationError(f.name, "type", "expected boolean, got %T", value)
	}
	f.value = &flag
	return nil
}

func (f *Boolean) ToWire() interface{} {
	if f.value == nil {
		return nil
	}
	return *f.value
}

func (f *Boolean) FromWire(value interface{}) error {
	if value == nil {
		f.value = nil
		return nil
	}
	return f.Set(value)
}

func (f *Boolean) Validate() error { return nil }
