package dao

// Parameter is one List filter: a field name with a single value or a set of
// acceptable values.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter builds a filter; more than one value means "any of".
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}
