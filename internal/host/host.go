package host

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/extbind/internal/bootstrap"
	"github.com/vk/extbind/internal/ctxlog"
	"github.com/vk/extbind/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Host evaluates HCL against the namespace tree of a loaded extension.
type Host struct {
	handle    *bootstrap.Handle
	variables map[string]cty.Value
}

// Result is the value of one named expression.
type Result struct {
	Name  string
	Value cty.Value
}

// New creates a Host for a ready extension handle.
func New(handle *bootstrap.Handle) *Host {
	return &Host{
		handle:    handle,
		variables: namespaceVariables(handle.Root()),
	}
}

// EvalContext builds an evaluation context whose functions run with ctx.
func (h *Host) EvalContext(ctx context.Context) *hcl.EvalContext {
	functions := make(map[string]function.Function)
	_ = h.handle.Root().Walk(func(n *registry.Node) error {
		for _, b := range n.Bindings() {
			functions[registry.JoinPath(b.Path())] = b.Function(ctx)
		}
		return nil
	})

	return &hcl.EvalContext{
		Variables: h.variables,
		Functions: functions,
	}
}

// Eval parses and evaluates a single expression.
func (h *Host) Eval(ctx context.Context, src string) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	expr, diags := hclsyntax.ParseExpression([]byte(src), "<expr>", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("failed to parse expression: %w", diags)
	}
	if err := h.Link(expr); err != nil {
		return cty.NilVal, err
	}

	val, diags := expr.Value(h.EvalContext(ctx))
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("failed to evaluate expression: %w", diags)
	}
	logger.Debug("Evaluated expression.", "expr", src, "type", val.Type().FriendlyName())
	return val, nil
}

// EvalFile evaluates every top-level attribute of an HCL file and returns
// the results in source order.
func (h *Host) EvalFile(ctx context.Context, path string) ([]Result, error) {
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return h.evalBody(ctx, path, file.Body)
}

// EvalSource is EvalFile for in-memory content.
func (h *Host) EvalSource(ctx context.Context, src []byte, filename string) ([]Result, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return h.evalBody(ctx, filename, file.Body)
}

func (h *Host) evalBody(ctx context.Context, filename string, body hcl.Body) ([]Result, error) {
	logger := ctxlog.FromContext(ctx)

	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to read attributes of %s: %w", filename, diags)
	}

	ordered := make([]*hcl.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		ordered = append(ordered, attr)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Range.Start.Byte < ordered[j].Range.Start.Byte
	})

	evalCtx := h.EvalContext(ctx)
	results := make([]Result, 0, len(ordered))
	for _, attr := range ordered {
		if err := h.Link(attr.Expr); err != nil {
			return nil, fmt.Errorf("attribute %q: %w", attr.Name, err)
		}
		val, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to evaluate attribute %q: %w", attr.Name, diags)
		}
		results = append(results, Result{Name: attr.Name, Value: val})
	}

	logger.Debug("Evaluated HCL file.", "file", filename, "attributes", len(results))
	return results, nil
}

// namespaceVariables turns the tree into one object variable per top-level
// namespace. Each object holds the namespace's constants and child
// namespaces.
func namespaceVariables(root *registry.Node) map[string]cty.Value {
	vars := make(map[string]cty.Value)
	for _, child := range root.Children() {
		vars[child.Name()] = namespaceObject(child)
	}
	for _, name := range root.ConstantNames() {
		v, _ := root.Constant(name)
		vars[name] = v
	}
	return vars
}

func namespaceObject(n *registry.Node) cty.Value {
	attrs := make(map[string]cty.Value)
	for _, child := range n.Children() {
		attrs[child.Name()] = namespaceObject(child)
	}
	for _, name := range n.ConstantNames() {
		v, _ := n.Constant(name)
		attrs[name] = v
	}
	if len(attrs) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(attrs)
}
