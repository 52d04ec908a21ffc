package extension

import (
	"reflect"

	"github.com/viant/x"
)

// Types registers the Go shapes of per-node result payloads, keyed by the
// "type" tag the remote service stamps on each payload.
type Types struct {
	x.Registry
}

// Register adds a payload type to the registry.
func (t *Types) Register(dataType *x.Type) {
	t.Registry.Register(dataType)
}

// Lookup returns a registered payload type, or nil when the tag is unknown.
func (t *Types) Lookup(name string) *x.Type {
	return t.Registry.Lookup(name)
}

// RegisterNamed registers value's type under the supplied wire tag.
func (t *Types) RegisterNamed(name string, value interface{}) {
	t.Register(x.NewType(reflect.TypeOf(value), x.WithName(name)))
}

// NewTypes creates a payload type registry.
func NewTypes(options ...x.RegistryOption) *Types {
	return &Types{Registry: *x.NewRegistry(options...)}
}
