package schema

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/fwgen/internal/config"
	"github.com/vk/fwgen/internal/ctxlog"
)

// Field declares one accepted key.
type Field struct {
	Key         string
	Required    bool
	Validator   Validator
	Description string
}

// Required declares a key that must be present.
func Required(key string, v Validator) Field {
	return Field{Key: key, Required: true, Validator: v}
}

// Optional declares a key that may be omitted.
func Optional(key string, v Validator) Field {
	return Field{Key: key, Validator: v}
}

// Schema is an ordered, conflict-free set of fields.
type Schema struct {
	fields []Field
	index  map[string]int
}

// New builds a schema. Declaring the same key twice is an error.
func New(fields ...Field) (*Schema, error) {
	s := &Schema{index: make(map[string]int, len(fields))}
	for _, f := range fields {
		if err := s.add(f); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustNew is like New but panics on a conflicting declaration. Schemas are
// built at module registration, so a conflict is a programming error.
func MustNew(fields ...Field) *Schema {
	s, err := New(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) add(f Field) error {
	if f.Key == "" {
		return fmt.Errorf("schema field must have a key")
	}
	if _, exists := s.index[f.Key]; exists {
		return fmt.Errorf("schema conflict: key %q is declared more than once", f.Key)
	}
	s.index[f.Key] = len(s.fields)
	s.fields = append(s.fields, f)
	return nil
}

// Extend returns a new schema holding the union of s and others.
func (s *Schema) Extend(others ...*Schema) (*Schema, error) {
	out, err := New(s.fields...)
	if err != nil {
		return nil, err
	}
	for _, o := range others {
		for _, f := range o.fields {
			if err := out.add(f); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// MustExtend is like Extend but panics on conflict.
func (s *Schema) MustExtend(others ...*Schema) *Schema {
	out, err := s.Extend(others...)
	if err != nil {
		panic(err)
	}
	return out
}

// Keys returns the declared keys in declaration order.
func (s *Schema) Keys() []string {
	keys := make([]string, len(s.fields))
	for i, f := range s.fields {
		keys[i] = f.Key
	}
	return keys
}

// Field returns the field declared for key.
func (s *Schema) Field(key string) (Field, bool) {
	i, ok := s.index[key]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Validate checks the attributes of one block against the schema. The
// returned record holds exactly the supplied keys, normalized.
func (s *Schema) Validate(ctx context.Context, attrs map[string]*config.Attribute, blockRange hcl.Range) (*Record, error) {
	logger := ctxlog.FromContext(ctx)
	var errs ValidationErrors

	for _, name := range config.SortedNames(attrs) {
		if _, ok := s.index[name]; ok {
			continue
		}
		e := &SchemaValidationError{
			Key:     name,
			Range:   attrs[name].Range,
			Summary: "unrecognized key",
		}
		if suggestion := s.suggest(name); suggestion != "" {
			e.Detail = fmt.Sprintf("did you mean %q?", suggestion)
		}
		errs = append(errs, e)
	}

	rec := newRecord(s, blockRange)
	for _, f := range s.fields {
		attr, ok := attrs[f.Key]
		if !ok {
			if f.Required {
				errs = append(errs, &SchemaValidationError{
					Key:     f.Key,
					Range:   blockRange,
					Summary: "required key is missing",
					Detail:  fmt.Sprintf("expected %s", f.Validator.Kind),
				})
			}
			continue
		}
		val, err := f.Validator.Check(attr.Value)
		if err != nil {
			errs = append(errs, &SchemaValidationError{
				Key:     f.Key,
				Range:   attr.Range,
				Summary: err.Error(),
			})
			continue
		}
		rec.set(f.Key, val, attr.Range)
	}

	if len(errs) > 0 {
		logger.Debug("Schema validation failed.", "range", blockRange.String(), "errors", len(errs))
		return nil, errs
	}
	logger.Debug("Schema validation passed.", "range", blockRange.String(), "keys", strings.Join(rec.Keys(), ","))
	return rec, nil
}

// suggest returns the closest declared key, if any is close enough.
func (s *Schema) suggest(name string) string {
	type candidate struct {
		key  string
		dist int
	}
	var cands []candidate
	for _, f := range s.fields {
		if d := levenshtein.Distance(name, f.Key, nil); d <= 3 {
			cands = append(cands, candidate{f.Key, d})
		}
	}
	if len(cands) == 0 {
		return ""
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })
	return cands[0].key
}
