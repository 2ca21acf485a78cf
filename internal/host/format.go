package host

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// FormatValue renders a value as JSON. Null values render as "null";
// unknown values cannot be rendered.
func FormatValue(v cty.Value) (string, error) {
	if v.IsNull() {
		return "null", nil
	}
	if !v.IsWhollyKnown() {
		return "", fmt.Errorf("value of type %s is not fully known", v.Type().FriendlyName())
	}
	out, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return "", fmt.Errorf("failed to encode %s value: %w", v.Type().FriendlyName(), err)
	}
	return string(out), nil
}

// TypeString renders a type the way manifests spell it.
func TypeString(ty cty.Type) string {
	if ty == cty.NilType {
		return "nil"
	}
	if ty.Equals(cty.DynamicPseudoType) {
		return "any"
	}
	return ty.FriendlyNameForConstraint()
}
