package yaml

import (
	"fmt"
	"math"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/fwgen/internal/config"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// LambdaTag marks a scalar as a C++ lambda body.
const LambdaTag = "!lambda"

// nodeRange returns the source range of node. yaml.v3 reports lines and
// columns only, so byte offsets stay zero.
func nodeRange(filename string, node *yaml.Node) hcl.Range {
	start := hcl.Pos{Line: node.Line, Column: node.Column}
	end := start
	if node.Kind == yaml.ScalarNode && !strings.Contains(node.Value, "\n") {
		end.Column += len(node.Value)
	}
	return hcl.Range{Filename: filename, Start: start, End: end}
}

// toCty converts a YAML node into a cty value. Scalars keep the type YAML
// resolved for them, so an unquoted 42 is a number, not a string.
func toCty(filename string, node *yaml.Node) (cty.Value, hcl.Diagnostics) {
	switch node.Kind {
	case yaml.AliasNode:
		return toCty(filename, node.Alias)
	case yaml.ScalarNode:
		return scalarToCty(filename, node)
	case yaml.SequenceNode:
		if len(node.Content) == 0 {
			return cty.EmptyTupleVal, nil
		}
		var diags hcl.Diagnostics
		vals := make([]cty.Value, 0, len(node.Content))
		for _, item := range node.Content {
			v, itemDiags := toCty(filename, item)
			diags = append(diags, itemDiags...)
			vals = append(vals, v)
		}
		return cty.TupleVal(vals), diags
	case yaml.MappingNode:
		var diags hcl.Diagnostics
		attrs := make(map[string]cty.Value, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			v, itemDiags := toCty(filename, node.Content[i+1])
			diags = append(diags, itemDiags...)
			attrs[node.Content[i].Value] = v
		}
		return cty.ObjectVal(attrs), diags
	}
	return cty.DynamicVal, hcl.Diagnostics{unexpected(filename, node, "Unsupported YAML node")}
}

func scalarToCty(filename string, node *yaml.Node) (cty.Value, hcl.Diagnostics) {
	switch node.ShortTag() {
	case LambdaTag:
		return config.LambdaVal(node.Value), nil
	case "!!str":
		return cty.StringVal(node.Value), nil
	case "!!null":
		return cty.NullVal(cty.DynamicPseudoType), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return cty.DynamicVal, hcl.Diagnostics{invalid(filename, node, err)}
		}
		return cty.BoolVal(b), nil
	case "!!int", "!!float":
		v, err := cty.ParseNumberVal(strings.ReplaceAll(node.Value, "_", ""))
		if err != nil {
			var f float64
			if decodeErr := node.Decode(&f); decodeErr != nil {
				return cty.DynamicVal, hcl.Diagnostics{invalid(filename, node, err)}
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return cty.DynamicVal, hcl.Diagnostics{invalid(filename, node, fmt.Errorf("%s is not a finite number", node.Value))}
			}
			v = cty.NumberFloatVal(f)
		}
		return v, nil
	}
	return cty.DynamicVal, hcl.Diagnostics{unexpected(filename, node, fmt.Sprintf("Unsupported tag %s", node.Tag))}
}

func unexpected(filename string, node *yaml.Node, summary string) *hcl.Diagnostic {
	rng := nodeRange(filename, node)
	return &hcl.Diagnostic{Severity: hcl.DiagError, Summary: summary, Subject: &rng}
}

func invalid(filename string, node *yaml.Node, err error) *hcl.Diagnostic {
	rng := nodeRange(filename, node)
	return &hcl.Diagnostic{Severity: hcl.DiagError, Summary: "Invalid value", Detail: err.Error(), Subject: &rng}
}

// fromCty converts a cty value into a YAML node, the inverse of toCty.
func fromCty(v cty.Value) (*yaml.Node, error) {
	if l, ok := config.AsLambda(v); ok {
		n := &yaml.Node{Kind: yaml.ScalarNode, Tag: LambdaTag, Value: l.Body}
		if strings.Contains(l.Body, "\n") {
			n.Style = yaml.LiteralStyle
		}
		return n, nil
	}
	if v.IsNull() {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("cannot write an unknown value")
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.AsString()}, nil
	case ty == cty.Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: fmt.Sprint(v.True())}, nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		tag := "!!float"
		if bf.IsInt() {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: bf.Text('g', -1)}, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			n, err := fromCty(ev)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, n)
		}
		return seq, nil
	case ty.IsObjectType() || ty.IsMapType():
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			n, err := fromCty(ev)
			if err != nil {
				return nil, err
			}
			m.Content = append(m.Content, keyNode(k.AsString()), n)
		}
		return m, nil
	}
	return nil, fmt.Errorf("cannot write a value of type %s", ty.FriendlyName())
}

func keyNode(name string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}
}
