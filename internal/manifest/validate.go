package manifest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/extbind/internal/bootstrap"
	"github.com/vk/extbind/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// ErrValidation is wrapped by every parity failure reported by Validate.
var ErrValidation = errors.New("manifest validation failed")

// Validate performs a strict parity check between a manifest and the
// exports of a loaded extension. It checks both the presence of members and
// the compatibility of their types.
func Validate(ctx context.Context, handle *bootstrap.Handle, m *Manifest) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	exports := make(map[string]bootstrap.Export)
	for _, e := range handle.Exports() {
		exports[e.Name()] = e
	}

	// Check for presence mismatches
	for key := range m.Namespaces {
		if e, ok := exports[key]; !ok || e.Kind != bootstrap.KindNamespace {
			errs = append(errs, fmt.Sprintf("namespace '%s': declared in manifest but not registered", key))
		}
	}
	for key, e := range exports {
		switch e.Kind {
		case bootstrap.KindFunction:
			if _, ok := m.Functions[key]; !ok {
				errs = append(errs, fmt.Sprintf("function '%s': registered but not declared in manifest", key))
			}
		case bootstrap.KindConstant:
			if _, ok := m.Constants[key]; !ok {
				errs = append(errs, fmt.Sprintf("constant '%s': registered but not declared in manifest", key))
			}
		}
	}

	for key, fn := range m.Functions {
		e, ok := exports[key]
		if !ok || e.Kind != bootstrap.KindFunction {
			errs = append(errs, fmt.Sprintf("function '%s': declared in manifest but not registered", key))
			continue
		}
		if len(fn.Params) != e.Arity {
			errs = append(errs, fmt.Sprintf("function '%s': arity mismatch. Manifest declares %d params but binding takes %d", key, len(fn.Params), e.Arity))
			continue
		}
		for i, want := range fn.Params {
			if msg := typeMismatch(want, e.Params[i]); msg != "" {
				errs = append(errs, fmt.Sprintf("function '%s', param %d: %s", key, i+1, msg))
			}
		}
		if fn.Returns.Equals(cty.DynamicPseudoType) {
			logger.Debug("Manifest function has no return type, skipping return check.", "function", key)
		} else if msg := typeMismatch(fn.Returns, e.Returns); msg != "" {
			errs = append(errs, fmt.Sprintf("function '%s', returns: %s", key, msg))
		}
	}

	for key, c := range m.Constants {
		e, ok := exports[key]
		if !ok || e.Kind != bootstrap.KindConstant {
			errs = append(errs, fmt.Sprintf("constant '%s': declared in manifest but not registered", key))
			continue
		}
		if c.Type.Equals(cty.DynamicPseudoType) {
			logger.Warn("Manifest constant has 'type = any', which disables static type checking.", "constant", key)
			continue
		}
		if msg := typeMismatch(c.Type, e.Returns); msg != "" {
			errs = append(errs, fmt.Sprintf("constant '%s': %s", key, msg))
		}
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("%w:\n- %s", ErrValidation, strings.Join(errs, "\n- "))
	}

	logger.Debug("Manifest matches registered exports.", "functions", len(m.Functions), "constants", len(m.Constants))
	return nil
}

// typeMismatch describes why got does not satisfy want, or returns "".
// A manifest type of any accepts everything.
func typeMismatch(want, got cty.Type) string {
	if want.Equals(cty.DynamicPseudoType) || want.Equals(got) {
		return ""
	}
	return fmt.Sprintf("type mismatch. Manifest requires '%s' but binding provides '%s'", friendlyName(want), friendlyName(got))
}

func friendlyName(ty cty.Type) string {
	if ty.Equals(cty.DynamicPseudoType) {
		return "any"
	}
	return ty.FriendlyName()
}
