package field

import (
	"github.com/viant/toolbox"
)

// ImageRef identifies a server-side image by name.  The bytes behind the
// name live on the remote service and move through the client, not through
// the field model.
type ImageRef struct {
	ImageName string `json:"image_name" name:"image_name"`
}

// Image references a server-side image.
type Image struct {
	name  string
	value *ImageRef
}

// NewImage creates an unset image field.
func NewImage(name string) *Image {
	return &Image{name: name}
}

func (f *Image) Kind() Kind   { return KindImage }
func (f *Image) Name() string { return f.name }

func (f *Image) Value() (interface{}, bool) {
	if f.value == nil {
		return nil, false
	}
	return *f.value, true
}

// Set accepts an ImageRef, *ImageRef, a bare image name, or the wire map.
func (f *Image) Set(value interface{}) error {
	switch v := value.(type) {
	case ImageRef:
		f.value = &v
		return nil
	case *ImageRef:
		ref := *v
		f.value = &ref
		return nil
	case string:
		f.value = &ImageRef{ImageName: v}
		return nil
	}
	ref := &ImageRef{}
	if err := toolbox.DefaultConverter.AssignConverted(ref, value); err != nil || ref.ImageName == "" {
		return validationError(f.name, "type", "expected image reference, got %T", value)
	}
	f.value = ref
	return nil
}

func (f *Image) ToWire() interface{} {
	if f.value == nil {
		return nil
	}
	return map[string]interface{}{"image_name": f.value.ImageName}
}

func (f *Image) FromWire(value interface{}) error {
	if value == nil {
		f.value = nil
		return nil
	}
	return f.Set(value)
}

func (f *Image) Validate() error { return nil }

// BoardRef identifies a board.  The sentinel id "none" addresses the
// uncategorized board.
type BoardRef struct {
	BoardID string `json:"board_id" name:"board_id"`
}

// Board references a destination board.
type Board struct {
	name  string
	value *BoardRef
}

// NewBoard creates an unset board field.
func NewBoard(name string) *Board {
	return &Board{name: name}
}

func (f *Board) Kind() Kind   { return KindBoard }
func (f *Board) Name() string { return f.name }

func (f *Board) Value() (interface{}, bool) {
	if f.value == nil {
		return nil, false
	}
	return *f.value, true
}

func (f *Board) Set(value interface{}) error {
	switch v := value.(type) {
	case BoardRef:
		f.value = &v
		return nil
	case *BoardRef:
		ref := *v
		f.value = &ref
		return nil
	case string:
		f.value = &BoardRef{BoardID: v}
		return nil
	}
	ref := &BoardRef{}
	if err := toolbox.DefaultConverter.AssignConverted(ref, value); err != nil || ref.BoardID == "" {
		return validationError(f.name, "type", "expected board reference, got %T", value)
	}
	f.value = ref
	return nil
}

func (f *Board) ToWire() interface{} {
	if f.value == nil {
		return nil
	}
	return map[string]interface{}{"board_id": f.value.BoardID}
}

func (f *Board) FromWire(value interface{}) error {
	if value == nil {
		f.value = nil
		return nil
	}
	return f.Set(value)
}

func (f *Board) Validate() error { return nil }

// ModelRef identifies an installed model by key/hash plus its descriptive
// attributes.  Key and Hash are authoritative on the server; Name, Base and
// Type are what SyncModelFields matches against.
type ModelRef struct {
	Key  string `json:"key" name:"key"`
	Hash string `json:"hash" name:"hash"`
	Name string `json:"name" name:"name"`
	Base string `json:"base" name:"base"`
	Type string `json:"type" name:"type"`
}

// ModelIdentifier references an installed model.
type ModelIdentifier struct {
	name  string
	value *ModelRef
}

// NewModelIdentifier creates an unset model identifier field.
func NewModelIdentifier(name string) *ModelIdentifier {
	return &ModelIdentifier{name: name}
}

func (f *ModelIdentifier) Kind() Kind   { return KindModelIdentifier }
func (f *ModelIdentifier) Name() string { return f.name }

func (f *ModelIdentifier) Value() (interface{}, bool) {
	if f.value == nil {
		return nil, false
	}
	return *f.value, true
}

// Ref returns the stored reference for in-place rewriting during model sync.
func (f *ModelIdentifier) Ref() *ModelRef {
	return f.value
}

func (f *ModelIdentifier) Set(value interface{}) error {
	switch v := value.(type) {
	case ModelRef:
		f.value = &v
		return nil
	case *ModelRef:
		ref := *v
		f.value = &ref
		return nil
	}
	ref := &ModelRef{}
	if err := toolbox.DefaultConverter.AssignConverted(ref, value); err != nil {
		return validationError(f.name, "type", "expected model identifier, got %T", value)
	}
	if ref.Key == "" && ref.Name == "" {
		return validationError(f.name, "type", "model identifier requires a key or a name")
	}
	f.value = ref
	return nil
}

func (f *ModelIdentifier) ToWire() interface{} {
	if f.value == nil {
		return nil
	}
	return map[string]interface{}{
		"key":  f.value.Key,
		"hash": f.value.Hash,
		"name": f.value.Name,
		"base": f.value.Base,
		"type": f.value.Type,
	}
}

func (f *ModelIdentifier) FromWire(value interface{}) error {
	if value == nil {
		f.value = nil
		return nil
	}
	return f.Set(value)
}

func (f *ModelIdentifier) Validate() error { return nil }
