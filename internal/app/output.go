package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/vk/extbind/internal/bootstrap"
	"github.com/vk/extbind/internal/host"
	"github.com/zclconf/go-cty/cty"
)

// writeResult prints one evaluation as "<label> = <json>".
func writeResult(w io.Writer, label string, v cty.Value) error {
	out, err := host.FormatValue(v)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	_, err = fmt.Fprintf(w, "%s = %s\n", label, out)
	return err
}

// writeExports prints the export table, one export per line.
func writeExports(w io.Writer, exports []bootstrap.Export) error {
	for _, e := range exports {
		var line string
		switch e.Kind {
		case bootstrap.KindFunction:
			params := make([]string, len(e.Params))
			for i, p := range e.Params {
				params[i] = host.TypeString(p)
			}
			line = fmt.Sprintf("function  %s(%s) %s", e.Name(), strings.Join(params, ", "), host.TypeString(e.Returns))
		case bootstrap.KindConstant:
			v, err := host.FormatValue(e.Value)
			if err != nil {
				return fmt.Errorf("%s: %w", e.Name(), err)
			}
			line = fmt.Sprintf("constant  %s = %s", e.Name(), v)
		default:
			line = fmt.Sprintf("namespace %s", e.Name())
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
