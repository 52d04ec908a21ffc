package field

import (
	"fmt"
)

// Collection holds an ordered list of elements of a single kind.  An empty
// element kind accepts elements of any kind.
type Collection struct {
	name      string
	element   Kind
	MinLength *int
	MaxLength *int
	items     []Field
}

// NewCollection creates an empty collection constrained to the given
// element kind.
func NewCollection(name string, element Kind) *Collection {
	return &Collection{name: name, element: element}
}

func (f *Collection) Kind() Kind        { return KindCollection }
func (f *Collection) Name() string      { return f.name }
func (f *Collection) ElementKind() Kind { return f.element }
func (f *Collection) Len() int          { return len(f.items) }

// Value returns the element values.  A collection is always considered set;
// emptiness is a legitimate value.
func (f *Collection) Value() (interface{}, bool) {
	values := make([]interface{}, 0, len(f.items))
	for _, item := range f.items {
		value, _ := item.Value()
		values = append(values, value)
	}
	return values, true
}

// Set replaces the entire collection.  On any element failure the previous
// content is preserved.
func (f *Collection) Set(value interface{}) error {
	elements, ok := value.([]interface{})
	if !ok {
		return validationError(f.name, "type", "expected collection, got %T", value)
	}
	replacement, err := f.materialize(elements)
	if err != nil {
		return err
	}
	if err := f.checkLength(len(replacement)); err != nil {
		return err
	}
	f.items = replacement
	return nil
}

// Append adds one element to the end of the collection.
func (f *Collection) Append(value interface{}) error {
	item, err := f.newElement(value)
	if err != nil {
		return err
	}
	if err := f.checkLength(len(f.items) + 1); err != nil {
		return err
	}
	f.items = append(f.items, item)
	return nil
}

// Remove deletes the element at the given position.
func (f *Collection) Remove(index int) error {
	if index < 0 || index >= len(f.items) {
		return fmt.Errorf("collection %q: index %d out of range [0..%d)", f.name, index, len(f.items))
	}
	if err := f.checkLength(len(f.items) - 1); err != nil {
		return err
	}
	f.items = append(f.items[:index], f.items[index+1:]...)
	return nil
}

// Clear removes every element.
func (f *Collection) Clear() {
	f.items = nil
}

// Iterator returns a restartable iterator over the current elements.  The
// iterator operates on a snapshot, so mutating the collection during
// iteration is safe.
func (f *Collection) Iterator() *Iterator {
	snapshot := make([]Field, len(f.items))
	copy(snapshot, f.items)
	return &Iterator{items: snapshot}
}

func (f *Collection) newElement(value interface{}) (Field, error) {
	kind := f.element
	if kind == "" {
		kind = inferKind(value)
	}
	item, err := New(kind, f.name)
	if err != nil {
		return nil, validationError(f.name, "element_type", "cannot hold %T", value)
	}
	if err := item.Set(value); err != nil {
		if verr, ok := err.(*ValidationError); ok && verr.Constraint == "type" {
			return nil, validationError(f.name, "element_type", "%s", verr.Message)
		}
		return nil, err
	}
	return item, nil
}

func (f *Collection) materialize(values []interface{}) ([]Field, error) {
	items := make([]Field, 0, len(values))
	for _, value := range values {
		item, err := f.newElement(value)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (f *Collection) checkLength(length int) error {
	if f.MinLength != nil && length < *f.MinLength {
		return validationError(f.name, "min_length", "length %d below minimum %d", length, *f.MinLength)
	}
	if f.MaxLength != nil && length > *f.MaxLength {
		return validationError(f.name, "max_length", "length %d above maximum %d", length, *f.MaxLength)
	}
	return nil
}

// ToWire renders the collection as a slice of element wire values.  An empty
// collection wires as an empty slice, not null.
func (f *Collection) ToWire() interface{} {
	values := make([]interface{}, 0, len(f.items))
	for _, item := range f.items {
		values = append(values, item.ToWire())
	}
	return values
}

func (f *Collection) FromWire(value interface{}) error {
	if value == nil {
		f.items = nil
		return nil
	}
	return f.Set(value)
}

func (f *Collection) Validate() error {
	if err := f.checkLength(len(f.items)); err != nil {
		return err
	}
	for _, item := range f.items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Iterator walks collection elements in order.  Reset rewinds to the first
// element.
type Iterator struct {
	items []Field
	next  int
}

// Next returns the next element, or nil when the iteration is exhausted.
func (i *Iterator) Next() Field {
	if i.next >= len(i.items) {
		return nil
	}
	item := i.items[i.next]
	i.next++
	return item
}

// Reset rewinds the iterator to the beginning.
func (i *Iterator) Reset() {
	i.next = 0
}

// inferKind guesses the element kind from a Go value; used only by
// unconstrained collections.
func inferKind(value interface{}) Kind {
	switch value.(type) {
	case string:
		return KindString
	case bool:
		return KindBoolean
	case int, int32, int64:
		return KindInteger
	case float32, float64:
		return KindFloat
	case ImageRef, *ImageRef:
		return KindImage
	case BoardRef, *BoardRef:
		return KindBoard
	case ModelRef, *ModelRef:
		return KindModelIdentifier
	case RGBA, *RGBA:
		return KindColor
	case Box, *Box:
		return KindBoundingBox
	}
	return KindString
}
