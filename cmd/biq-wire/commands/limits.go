package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/qbiq/biq-go/pkg/limit"
)

// LimitTypeInfo describes one limit type.
type LimitTypeInfo struct {
	Tag    uint8  `json:"tag"`
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// LimitTypes returns every named limit type in tag order.
func LimitTypes() []LimitTypeInfo {
	all := limit.AllTypes()
	out := make([]LimitTypeInfo, 0, len(all))
	for _, t := range all {
		out = append(out, LimitTypeInfo{Tag: t.Raw(), Name: t.String(), Domain: t.Domain().String()})
	}
	return out
}

// RunLimits prints the limit type table as "table" or "json".
func RunLimits(format string, w io.Writer) error {
	types := LimitTypes()

	switch format {
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TAG\tNAME\tDOMAIN")
		for _, t := range types {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", t.Tag, t.Name, t.Domain)
		}
		return tw.Flush()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(types)
	default:
		return fmt.Errorf("unknown format: %s (supported: table, json)", format)
	}
}
