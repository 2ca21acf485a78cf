package registry

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// PathSeparator joins namespace segments the same way the HCL host spells
// namespaced function calls.
const PathSeparator = "::"

// ValidName reports whether s can be used as a namespace segment, a function
// name or a constant name. Names must be HCL identifiers so that every
// registered member stays addressable from the host.
func ValidName(s string) bool {
	return s != "" && hclsyntax.ValidIdentifier(s)
}

// JoinPath renders path segments as "A::B::c".
func JoinPath(path []string) string {
	return strings.Join(path, PathSeparator)
}

// ParsePath splits "A::B::c" or "A.B.c" into its segments.
func ParsePath(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidName)
	}

	var parts []string
	if strings.Contains(s, PathSeparator) {
		parts = strings.Split(s, PathSeparator)
	} else {
		parts = strings.Split(s, ".")
	}

	for _, p := range parts {
		if !ValidName(p) {
			return nil, fmt.Errorf("%w: segment %q in path %q", ErrInvalidName, p, s)
		}
	}
	return parts, nil
}
