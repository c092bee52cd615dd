package yaml

import (
	"io"

	"github.com/vk/fwgen/internal/config"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// Writer is the YAML implementation of config.Writer.
type Writer struct{}

// NewWriter creates a new YAML writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write renders the model in the layout Loader reads. Components of one
// domain are grouped into a single list, in order of first appearance.
func (w *Writer) Write(out io.Writer, m *config.Model) error {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	lists := make(map[string]*yaml.Node)
	for _, c := range m.Components {
		list, ok := lists[c.Domain]
		if !ok {
			list = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			lists[c.Domain] = list
			root.Content = append(root.Content, keyNode(c.Domain), list)
		}
		item, err := attributesNode(c.Order, c.Attributes)
		if err != nil {
			return err
		}
		list.Content = append(list.Content, item)
	}

	if len(m.Automations) > 0 {
		autos := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, a := range m.Automations {
			item := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			idNode, _ := fromCty(cty.StringVal(a.ID))
			item.Content = append(item.Content, keyNode("id"), idNode)

			if len(a.Args) > 0 {
				args := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
				for _, arg := range a.Args {
					args.Content = append(args.Content, &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: []*yaml.Node{
						keyNode("name"), keyNode(arg.Name),
						keyNode("type"), keyNode(arg.Type),
					}})
				}
				item.Content = append(item.Content, keyNode(argsKey), args)
			}

			then := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			for _, act := range a.Actions {
				body, err := attributesNode(act.Order, act.Attributes)
				if err != nil {
					return err
				}
				then.Content = append(then.Content, &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: []*yaml.Node{
					keyNode(act.Name), body,
				}})
			}
			item.Content = append(item.Content, keyNode(thenKey), then)
			autos.Content = append(autos.Content, item)
		}
		root.Content = append(root.Content, keyNode(automationKey), autos)
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return err
	}
	return enc.Close()
}

func attributesNode(order []string, attrs map[string]*config.Attribute) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, name := range config.OrderedNames(order, attrs) {
		v, err := fromCty(attrs[name].Value)
		if err != nil {
			return nil, err
		}
		n.Content = append(n.Content, keyNode(name), v)
	}
	return n, nil
}
