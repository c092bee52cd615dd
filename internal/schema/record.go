package schema

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/fwgen/internal/config"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Record is a validated configuration block. It is never mutated after
// validation.
type Record struct {
	schema *Schema
	keys   []string
	values map[string]cty.Value
	ranges map[string]hcl.Range
	rng    hcl.Range
}

// Reference is a use of another block's identifier.
type Reference struct {
	ID    string
	Class string
	Key   string
	Range hcl.Range
}

func newRecord(s *Schema, rng hcl.Range) *Record {
	return &Record{
		schema: s,
		values: make(map[string]cty.Value),
		ranges: make(map[string]hcl.Range),
		rng:    rng,
	}
}

func (r *Record) set(key string, v cty.Value, rng hcl.Range) {
	r.keys = append(r.keys, key)
	r.values[key] = v
	r.ranges[key] = rng
}

// Keys returns the keys present in the record, in schema order.
func (r *Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Get returns the normalized value of key.
func (r *Record) Get(key string) (cty.Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// String returns the string value of key, or "" when absent.
func (r *Record) String(key string) string {
	v, ok := r.values[key]
	if !ok || v.Type() != cty.String {
		return ""
	}
	return v.AsString()
}

// Bool returns the boolean value of key and whether it was present.
func (r *Record) Bool(key string) (bool, bool) {
	v, ok := r.values[key]
	if !ok || v.Type() != cty.Bool {
		return false, false
	}
	return v.True(), true
}

// Decode decodes the value of key into the Go value pointed to by target.
func (r *Record) Decode(key string, target any) error {
	v, ok := r.values[key]
	if !ok {
		return fmt.Errorf("key %q is not set", key)
	}
	if err := gocty.FromCtyValue(v, target); err != nil {
		return fmt.Errorf("decoding %q: %w", key, err)
	}
	return nil
}

// Lambda returns the lambda stored at key, if the value is one.
func (r *Record) Lambda(key string) (*config.Lambda, bool) {
	return config.AsLambda(r.values[key])
}

// KeyRange returns the source range of key, falling back to the block range.
func (r *Record) KeyRange(key string) hcl.Range {
	if rng, ok := r.ranges[key]; ok {
		return rng
	}
	return r.rng
}

// Range returns the source range of the whole block.
func (r *Record) Range() hcl.Range {
	return r.rng
}

// DeclaredID returns the identifier declared by this record and its class.
func (r *Record) DeclaredID() (id, class string, ok bool) {
	for _, key := range r.keys {
		f, _ := r.schema.Field(key)
		if c, declares := f.Validator.Declares(); declares {
			return r.values[key].AsString(), c, true
		}
	}
	return "", "", false
}

// References lists every identifier this record refers to, through UseID
// fields and through id(...) calls inside lambdas.
func (r *Record) References() []Reference {
	var refs []Reference
	for _, key := range r.keys {
		f, _ := r.schema.Field(key)
		v := r.values[key]
		if c, uses := f.Validator.References(); uses {
			refs = append(refs, Reference{ID: v.AsString(), Class: c, Key: key, Range: r.ranges[key]})
		}
		if l, ok := r.Lambda(key); ok {
			for _, id := range l.References() {
				refs = append(refs, Reference{ID: id, Key: key, Range: r.ranges[key]})
			}
		}
	}
	return refs
}

// Attributes converts the record back into raw attributes, e.g. to validate
// it again or to write it out.
func (r *Record) Attributes() map[string]*config.Attribute {
	attrs := make(map[string]*config.Attribute, len(r.keys))
	for _, key := range r.keys {
		attrs[key] = &config.Attribute{Name: key, Value: r.values[key], Range: r.ranges[key]}
	}
	return attrs
}

// Equal reports whether both records hold the same keys and values.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	if len(r.keys) != len(other.keys) {
		return false
	}
	for i, key := range r.keys {
		if other.keys[i] != key {
			return false
		}
		a, b := r.values[key], other.values[key]
		if la, ok := config.AsLambda(a); ok {
			lb, ok := config.AsLambda(b)
			if !ok || la.Body != lb.Body {
				return false
			}
			continue
		}
		if !a.RawEquals(b) {
			return false
		}
	}
	return true
}
