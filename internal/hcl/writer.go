package hcl

import (
	"io"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/vk/fwgen/internal/config"
	"github.com/zclconf/go-cty/cty"
)

// Writer is the HCL implementation of config.Writer.
type Writer struct{}

// NewWriter creates a new HCL writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write renders the model in the syntax Loader reads.
func (w *Writer) Write(out io.Writer, m *config.Model) error {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	for i, c := range m.Components {
		if i > 0 {
			root.AppendNewline()
		}
		body := root.AppendNewBlock(c.Domain, nil).Body()
		writeAttributes(body, c.Order, c.Attributes)
	}

	for _, a := range m.Automations {
		if len(root.Blocks()) > 0 {
			root.AppendNewline()
		}
		body := root.AppendNewBlock(automationBlock, []string{a.ID}).Body()
		for _, arg := range a.Args {
			body.AppendNewBlock("arg", []string{arg.Name}).Body().SetAttributeValue("type", cty.StringVal(arg.Type))
		}
		for _, act := range a.Actions {
			writeAttributes(body.AppendNewBlock("action", []string{act.Name}).Body(), act.Order, act.Attributes)
		}
	}

	_, err := f.WriteTo(out)
	return err
}

func writeAttributes(body *hclwrite.Body, order []string, attrs map[string]*config.Attribute) {
	for _, name := range config.OrderedNames(order, attrs) {
		v := attrs[name].Value
		if l, ok := config.AsLambda(v); ok {
			body.SetAttributeRaw(name, hclwrite.TokensForFunctionCall("lambda", hclwrite.TokensForValue(cty.StringVal(l.Body))))
			continue
		}
		body.SetAttributeValue(name, v)
	}
}
