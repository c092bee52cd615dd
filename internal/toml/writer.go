// Package toml writes configuration models as TOML. It is an output format
// only: `-dump-format toml` renders the validated configuration with it.
package toml

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml"
	"github.com/vk/fwgen/internal/config"
	"github.com/zclconf/go-cty/cty"
)

// Writer is the TOML implementation of config.Writer.
type Writer struct{}

// NewWriter creates a new TOML writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write renders every domain as an array of tables. Lambdas become inline
// tables with a single lambda key, since TOML has no tags.
func (w *Writer) Write(out io.Writer, m *config.Model) error {
	root := make(map[string]interface{})

	for _, c := range m.Components {
		item, err := attributesMap(c.Attributes)
		if err != nil {
			return fmt.Errorf("%s: %w", c.Domain, err)
		}
		list, _ := root[c.Domain].([]map[string]interface{})
		root[c.Domain] = append(list, item)
	}

	var autos []map[string]interface{}
	for _, a := range m.Automations {
		item := map[string]interface{}{"id": a.ID}
		if len(a.Args) > 0 {
			args := make([]map[string]interface{}, len(a.Args))
			for i, arg := range a.Args {
				args[i] = map[string]interface{}{"name": arg.Name, "type": arg.Type}
			}
			item["args"] = args
		}
		then := make([]map[string]interface{}, 0, len(a.Actions))
		for _, act := range a.Actions {
			body, err := attributesMap(act.Attributes)
			if err != nil {
				return fmt.Errorf("automation %s: %w", a.ID, err)
			}
			then = append(then, map[string]interface{}{act.Name: body})
		}
		item["then"] = then
		autos = append(autos, item)
	}
	if len(autos) > 0 {
		root["automation"] = autos
	}

	tree, err := toml.TreeFromMap(root)
	if err != nil {
		return fmt.Errorf("failed to build TOML document: %w", err)
	}
	_, err = tree.WriteTo(out)
	return err
}

func attributesMap(attrs map[string]*config.Attribute) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(attrs))
	for name, attr := range attrs {
		v, err := goValue(attr.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// goValue converts a cty value into the plain Go types go-toml understands.
func goValue(v cty.Value) (interface{}, error) {
	if l, ok := config.AsLambda(v); ok {
		return map[string]interface{}{"lambda": l.Body}, nil
	}
	if v.IsNull() || !v.IsWhollyKnown() {
		return nil, fmt.Errorf("TOML cannot represent null or unknown values")
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if i, acc := bf.Int64(); bf.IsInt() && acc == 0 {
			return i, nil
		}
		f, _ := bf.Float64()
		return f, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		var out []interface{}
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			gv, err := goValue(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, gv)
		}
		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]interface{})
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			gv, err := goValue(ev)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = gv
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot write a value of type %s", ty.FriendlyName())
}
