package commands

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/qbiq/biq-go/pkg/schema"
)

// RunSchema prints a schema generation. A generation of 0 lists the
// available generations instead.
func RunSchema(gen int, format string, w io.Writer) error {
	if gen == 0 {
		gens, err := schema.Generations()
		if err != nil {
			return err
		}
		for _, g := range gens {
			m, err := schema.Load(g)
			if err != nil {
				return err
			}
			marker := " "
			if g == schema.CurrentGeneration {
				marker = "*"
			}
			fmt.Fprintf(w, "%s %d  %s\n", marker, g, m.Description)
		}
		return nil
	}

	m, err := schema.Load(gen)
	if err != nil {
		return err
	}

	switch format {
	case "text", "":
		printManifest(w, m)
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format: %s (supported: text, yaml)", format)
	}
}

func printManifest(w io.Writer, m *schema.Manifest) {
	fmt.Fprintf(w, "Generation %d: %s\n", m.Generation, m.Description)
	fmt.Fprintf(w, "Account IDs: %s\n", m.Identifiers.AccountID)
	prefix := m.Identifiers.DeviceURNPrefix
	if m.Identifiers.DeviceURNPrefixEnforced {
		prefix += " (enforced)"
	}
	fmt.Fprintf(w, "Device URN prefix: %s\n", prefix)

	for _, name := range m.EntityNames() {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s\n", name)
		fmt.Fprintf(w, "  fields: %s\n", strings.Join(m.Fields(name), ", "))
		for _, key := range m.DeprecatedKeys(name) {
			def, _ := m.Deprecation(name, key)
			line := fmt.Sprintf("  deprecated: %s (since %d)", key, def.Since)
			if def.Replacement != "" {
				line += " -> " + def.Replacement
			}
			fmt.Fprintln(w, line)
		}
	}
}

// RunChanges prints the keys added and removed between two generations.
func RunChanges(from, to int, w io.Writer) error {
	a, err := schema.Load(from)
	if err != nil {
		return err
	}
	b, err := schema.Load(to)
	if err != nil {
		return err
	}

	added, removed := schema.Changes(a, b)
	fmt.Fprintf(w, "Generation %d -> %d\n", from, to)
	for _, k := range added {
		fmt.Fprintf(w, "  + %s\n", k)
	}
	for _, k := range removed {
		fmt.Fprintf(w, "  - %s\n", k)
	}
	if len(added) == 0 && len(removed) == 0 {
		fmt.Fprintln(w, "  (no changes)")
	}
	return nil
}
