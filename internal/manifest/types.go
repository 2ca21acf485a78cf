// This file contains the logic for parsing HCL type expressions (e.g., `string`,
// `list(number)`) into their corresponding cty.Type objects.

package manifest

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/extbind/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// isMissing reports whether an optional expression attribute was omitted.
// gohcl fills omitted hcl.Expression fields with a synthetic static
// expression rather than leaving them nil.
func isMissing(expr hcl.Expression) bool {
	if expr == nil {
		return true
	}
	_, ok := expr.(hclsyntax.Expression)
	return !ok
}

// typeExprToCtyType converts an HCL type expression into its cty.Type equivalent.
func typeExprToCtyType(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	logger := ctxlog.FromContext(ctx)

	if isMissing(expr) {
		logger.Debug("Type expression is missing, defaulting to any.")
		return cty.DynamicPseudoType, nil
	}

	switch v := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		if len(v.Args) != 1 {
			return cty.DynamicPseudoType, fmt.Errorf("type constructors (list, map, set) require exactly one argument, got %d", len(v.Args))
		}

		// Recursively parse the inner type.
		elementType, err := typeExprToCtyType(ctx, v.Args[0])
		if err != nil {
			return cty.DynamicPseudoType, err
		}
		if elementType.Equals(cty.DynamicPseudoType) {
			return cty.DynamicPseudoType, fmt.Errorf("collection types cannot contain type 'any'")
		}

		switch v.Name {
		case "list":
			return cty.List(elementType), nil
		case "map":
			return cty.Map(elementType), nil
		case "set":
			return cty.Set(elementType), nil
		default:
			return cty.DynamicPseudoType, fmt.Errorf("unknown type constructor function %q", v.Name)
		}

	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return cty.DynamicPseudoType, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		switch rootName := v.Traversal.RootName(); rootName {
		case "string":
			return cty.String, nil
		case "number":
			return cty.Number, nil
		case "bool":
			return cty.Bool, nil
		case "any":
			return cty.DynamicPseudoType, nil
		default:
			return cty.DynamicPseudoType, fmt.Errorf("unknown primitive type %q", rootName)
		}

	default:
		return cty.DynamicPseudoType, fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}

// paramTypes parses a tuple of type expressions. An omitted list means the
// function takes no parameters.
func paramTypes(ctx context.Context, expr hcl.Expression) ([]cty.Type, error) {
	if isMissing(expr) {
		return nil, nil
	}

	items, diags := hcl.ExprList(expr)
	if diags.HasErrors() {
		return nil, fmt.Errorf("params must be a list of types: %w", diags)
	}

	types := make([]cty.Type, 0, len(items))
	for i, item := range items {
		ty, err := typeExprToCtyType(ctx, item)
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i+1, err)
		}
		types = append(types, ty)
	}
	return types, nil
}
