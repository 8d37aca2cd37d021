package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

func writeValue(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "raw":
		if s, ok := v.(string); ok {
			_, err := io.WriteString(w, s)
			return err
		}
		return writeValue(w, "json", v)
	}
	return fmt.Errorf("unsupported output format %q", format)
}
