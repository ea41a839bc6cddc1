package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// print writes v in the selected structured format, or calls text for the
// human readable one.
func (c *cli) print(v any, text func()) error {
	switch c.format {
	case "json":
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		// Round-trip through JSON so keys follow the json tags.
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var m any
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		enc := yaml.NewEncoder(c.out)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return err
		}
		return enc.Close()
	default:
		text()
		return nil
	}
}

func (c *cli) printTable(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(c.out, 0, 8, 2, ' ', 0)

	upper := make([]string, len(headers))
	for i, h := range headers {
		upper[i] = strings.ToUpper(h)
	}
	fmt.Fprintln(w, strings.Join(upper, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}
