package yaml

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/fwgen/internal/config"
	"github.com/vk/fwgen/internal/ctxlog"
	"github.com/vk/fwgen/internal/fsutil"
	"gopkg.in/yaml.v3"
)

const (
	automationKey = "automation"
	argsKey       = "args"
	thenKey       = "then"
)

// Loader is the YAML implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new YAML configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Extensions implements config.Loader.
func (l *Loader) Extensions() []string {
	return []string{".yaml", ".yml"}
}

// Load reads every YAML file under paths into one model. A file may hold
// several documents separated by ---.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	files, err := fsutil.ResolveFiles(paths, l.Extensions()...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered YAML files.", "count", len(files))

	model := config.NewModel()
	var diags hcl.Diagnostics
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		m, fileDiags := l.parse(src, path)
		diags = append(diags, fileDiags...)
		model.Merge(m)
	}

	if diags.HasErrors() {
		return model, fmt.Errorf("failed to load YAML configuration: %w", diags)
	}
	logger.Debug("YAML loading complete.", "components", len(model.Components), "automations", len(model.Automations))
	return model, nil
}

// LoadBytes parses a single in-memory source.
func (l *Loader) LoadBytes(_ context.Context, src []byte, filename string) (*config.Model, error) {
	model, diags := l.parse(src, filename)
	if diags.HasErrors() {
		return model, fmt.Errorf("failed to load YAML configuration: %w", diags)
	}
	return model, nil
}

func (l *Loader) parse(src []byte, filename string) (*config.Model, hcl.Diagnostics) {
	model := config.NewModel()
	var diags hcl.Diagnostics

	dec := yaml.NewDecoder(bytes.NewReader(src))
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid YAML",
				Detail:   err.Error(),
				Subject:  &hcl.Range{Filename: filename},
			})
			break
		}
		if len(doc.Content) == 0 {
			continue
		}
		diags = append(diags, l.translateDocument(filename, doc.Content[0], model)...)
	}
	return model, diags
}

func (l *Loader) translateDocument(filename string, root *yaml.Node, model *config.Model) hcl.Diagnostics {
	if root.Kind != yaml.MappingNode {
		return hcl.Diagnostics{unexpected(filename, root, "Top level must be a mapping of component domains")}
	}

	var diags hcl.Diagnostics
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		for _, item := range blockItems(value) {
			if item.Kind != yaml.MappingNode {
				diags = append(diags, unexpected(filename, item, fmt.Sprintf("Each %s entry must be a mapping", key.Value)))
				continue
			}
			if key.Value == automationKey {
				a, itemDiags := l.translateAutomation(filename, item)
				diags = append(diags, itemDiags...)
				if a != nil {
					model.Automations = append(model.Automations, a)
				}
				continue
			}
			attrs, order, itemDiags := translateAttributes(filename, item)
			diags = append(diags, itemDiags...)
			model.Components = append(model.Components, &config.Component{
				Domain:     key.Value,
				Attributes: attrs,
				Order:      order,
				Range:      nodeRange(filename, item),
			})
		}
	}
	return diags
}

// blockItems accepts both a single mapping and a list of mappings.
func blockItems(n *yaml.Node) []*yaml.Node {
	if n.Kind == yaml.SequenceNode {
		return n.Content
	}
	return []*yaml.Node{n}
}

func translateAttributes(filename string, n *yaml.Node) (map[string]*config.Attribute, []string, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	attrs := make(map[string]*config.Attribute, len(n.Content)/2)
	order := make([]string, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if _, dup := attrs[key.Value]; dup {
			diags = append(diags, unexpected(filename, key, fmt.Sprintf("Duplicate key %q", key.Value)))
			continue
		}
		v, valDiags := toCty(filename, value)
		diags = append(diags, valDiags...)
		attrs[key.Value] = &config.Attribute{Name: key.Value, Value: v, Range: nodeRange(filename, value)}
		order = append(order, key.Value)
	}
	return attrs, order, diags
}

func (l *Loader) translateAutomation(filename string, n *yaml.Node) (*config.Automation, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	a := &config.Automation{Range: nodeRange(filename, n)}

	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		switch key.Value {
		case "id":
			a.ID = value.Value
		case argsKey:
			for _, item := range blockItems(value) {
				var arg struct {
					Name string `yaml:"name"`
					Type string `yaml:"type"`
				}
				if err := item.Decode(&arg); err != nil {
					diags = append(diags, invalid(filename, item, err))
					continue
				}
				a.Args = append(a.Args, &config.Arg{Name: arg.Name, Type: arg.Type})
			}
		case thenKey:
			for _, item := range blockItems(value) {
				if item.Kind != yaml.MappingNode || len(item.Content) != 2 {
					diags = append(diags, unexpected(filename, item, "Each action must be a mapping with a single action name"))
					continue
				}
				name, body := item.Content[0], item.Content[1]
				attrs, order, actDiags := translateAttributes(filename, body)
				diags = append(diags, actDiags...)
				a.Actions = append(a.Actions, &config.Action{
					Name:       name.Value,
					Attributes: attrs,
					Order:      order,
					Range:      nodeRange(filename, name),
				})
			}
		default:
			diags = append(diags, unexpected(filename, key, fmt.Sprintf("Unexpected automation key %q", key.Value)))
		}
	}

	if a.ID == "" {
		diags = append(diags, unexpected(filename, n, "Missing automation id"))
	}
	if diags.HasErrors() {
		return nil, diags
	}
	return a, diags
}
