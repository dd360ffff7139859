// Package validate is the schema gate every payload passes through before it
// crosses the API boundary, in either direction.
//
// It wraps go-playground/validator and reports failures as normalized
// *apierror.Error values. Field paths in messages use JSON tag names so they
// match the wire format rather than Go struct fields.
package validate

import (
	"reflect"
	"strings"

	"github.com/chimerakang/hotspot-go/apierror"
	"github.com/go-playground/validator/v10"
)

// Gate validates request and response payloads against their declared shapes.
type Gate struct {
	v *validator.Validate
}

// New creates a validation gate.
func New() *Gate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report wire-format field names, not Go identifiers.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Gate{v: v}
}

// Struct validates a full payload. A failure is returned as a normalized
// validation error, never raised.
func (g *Gate) Struct(payload any) error {
	if err := g.v.Struct(payload); err != nil {
		return apierror.FromValidation(err)
	}
	return nil
}

// Partial validates a partial-update payload. Partial structs declare pointer
// fields; nil fields are absent and are neither validated nor coerced to
// defaults. The validator skips nil pointers through omitempty tags, so this
// is a plain struct check with partial semantics encoded in the shape.
func (g *Gate) Partial(payload any) error {
	return g.Struct(payload)
}

// Each validates every element of a list independently. One bad element fails
// the whole call: callers must not observe a partially-validated list as if
// it were complete.
func (g *Gate) Each(list any) error {
	rv := reflect.ValueOf(list)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return g.Struct(list)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := g.v.Struct(rv.Index(i).Interface()); err != nil {
			return apierror.FromValidation(err)
		}
	}
	return nil
}

// Var validates a single value against a rule tag.
func (g *Gate) Var(value any, tag string) error {
	if err := g.v.Var(value, tag); err != nil {
		return apierror.FromValidation(err)
	}
	return nil
}
