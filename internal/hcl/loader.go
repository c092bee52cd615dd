package hcl

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/fwgen/internal/config"
	"github.com/vk/fwgen/internal/ctxlog"
	"github.com/vk/fwgen/internal/fsutil"
)

const automationBlock = "automation"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Extensions implements config.Loader.
func (l *Loader) Extensions() []string {
	return []string{".hcl"}
}

// argSpec is the body of an automation `arg` block.
type argSpec struct {
	Type string `hcl:"type"`
}

// Load parses every .hcl file under paths and translates the blocks into the
// format-agnostic model. Parse and evaluation diagnostics from all files are
// collected before returning.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.ResolveFiles(paths, l.Extensions()...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	model := config.NewModel()
	var diags hcl.Diagnostics

	for _, path := range files {
		file, parseDiags := parser.ParseHCLFile(path)
		diags = append(diags, parseDiags...)
		if parseDiags.HasErrors() {
			continue
		}
		model.Files[path] = file
		diags = append(diags, l.translateFile(ctx, file, model)...)
	}

	if diags.HasErrors() {
		return model, fmt.Errorf("failed to load HCL configuration: %w", diags)
	}
	logger.Debug("HCL loading complete.", "components", len(model.Components), "automations", len(model.Automations))
	return model, nil
}

// LoadBytes parses a single in-memory source, e.g. for tests or stdin.
func (l *Loader) LoadBytes(ctx context.Context, src []byte, filename string) (*config.Model, error) {
	parser := hclparse.NewParser()
	model := config.NewModel()
	file, diags := parser.ParseHCL(src, filename)
	if !diags.HasErrors() {
		model.Files[filename] = file
		diags = append(diags, l.translateFile(ctx, file, model)...)
	}
	if diags.HasErrors() {
		return model, fmt.Errorf("failed to load HCL configuration: %w", diags)
	}
	return model, nil
}

func (l *Loader) translateFile(ctx context.Context, file *hcl.File, model *config.Model) hcl.Diagnostics {
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unsupported file body",
			Subject:  file.Body.MissingItemRange().Ptr(),
		}}
	}

	var diags hcl.Diagnostics
	for name, attr := range body.Attributes {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unexpected top-level attribute",
			Detail:   fmt.Sprintf("%q must be set inside a component block.", name),
			Subject:  attr.NameRange.Ptr(),
		})
	}

	evalCtx := newEvalContext()
	for _, block := range body.Blocks {
		if block.Type == automationBlock {
			a, blockDiags := l.translateAutomation(block, evalCtx)
			diags = append(diags, blockDiags...)
			if a != nil {
				model.Automations = append(model.Automations, a)
			}
			continue
		}
		c, blockDiags := l.translateComponent(block, evalCtx)
		diags = append(diags, blockDiags...)
		if c != nil {
			model.Components = append(model.Components, c)
		}
	}
	ctxlog.FromContext(ctx).Debug("Translated HCL file.", "file", file.Body.MissingItemRange().Filename, "blocks", len(body.Blocks))
	return diags
}

func (l *Loader) translateComponent(block *hclsyntax.Block, evalCtx *hcl.EvalContext) (*config.Component, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	if len(block.Labels) > 0 {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unexpected block label",
			Detail:   fmt.Sprintf("%q blocks take no labels; set the id attribute instead.", block.Type),
			Subject:  block.LabelRanges[0].Ptr(),
		})
	}
	for _, nested := range block.Body.Blocks {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unexpected nested block",
			Detail:   fmt.Sprintf("%q blocks accept attributes only.", block.Type),
			Subject:  nested.DefRange().Ptr(),
		})
	}

	attrs, order, attrDiags := evalAttributes(block.Body, evalCtx)
	diags = append(diags, attrDiags...)
	if diags.HasErrors() {
		return nil, diags
	}
	return &config.Component{
		Domain:     block.Type,
		Attributes: attrs,
		Order:      order,
		Range:      block.DefRange(),
	}, diags
}

func (l *Loader) translateAutomation(block *hclsyntax.Block, evalCtx *hcl.EvalContext) (*config.Automation, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	if len(block.Labels) != 1 {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Missing automation id",
			Detail:   `An automation block needs exactly one label, its id: automation "on_boot" { ... }.`,
			Subject:  block.DefRange().Ptr(),
		}}
	}
	a := &config.Automation{ID: block.Labels[0], Range: block.DefRange()}

	for name, attr := range block.Body.Attributes {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unexpected attribute",
			Detail:   fmt.Sprintf("%q is not valid in an automation; use arg and action blocks.", name),
			Subject:  attr.NameRange.Ptr(),
		})
	}

	for _, child := range block.Body.Blocks {
		switch {
		case child.Type == "arg" && len(child.Labels) == 1:
			var spec argSpec
			diags = append(diags, gohcl.DecodeBody(child.Body, evalCtx, &spec)...)
			a.Args = append(a.Args, &config.Arg{Name: child.Labels[0], Type: spec.Type})
		case child.Type == "action" && len(child.Labels) == 1:
			for _, nested := range child.Body.Blocks {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Unexpected nested block",
					Detail:   "Actions accept attributes only.",
					Subject:  nested.DefRange().Ptr(),
				})
			}
			attrs, order, attrDiags := evalAttributes(child.Body, evalCtx)
			diags = append(diags, attrDiags...)
			a.Actions = append(a.Actions, &config.Action{
				Name:       child.Labels[0],
				Attributes: attrs,
				Order:      order,
				Range:      child.DefRange(),
			})
		default:
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unexpected block in automation",
				Detail:   `Expected arg "<name>" { type = "..." } or action "<name>" { ... }.`,
				Subject:  child.DefRange().Ptr(),
			})
		}
	}

	if diags.HasErrors() {
		return nil, diags
	}
	return a, diags
}

// evalAttributes evaluates every attribute of body and returns them with
// their names in source order.
func evalAttributes(body *hclsyntax.Body, evalCtx *hcl.EvalContext) (map[string]*config.Attribute, []string, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	attrs := make(map[string]*config.Attribute, len(body.Attributes))
	ordered := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, attr := range body.Attributes {
		ordered = append(ordered, attr)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].SrcRange.Start.Byte < ordered[j].SrcRange.Start.Byte
	})

	order := make([]string, 0, len(ordered))
	for _, attr := range ordered {
		val, valDiags := attr.Expr.Value(evalCtx)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() {
			continue
		}
		attrs[attr.Name] = &config.Attribute{Name: attr.Name, Value: val, Range: attr.Expr.Range()}
		order = append(order, attr.Name)
	}
	return attrs, order, diags
}
