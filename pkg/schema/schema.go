// Package schema records the generations of the BIQ document schema: which
// fields each entity carries, which were added, and which are deprecated.
//
// The manifests are embedded YAML files. The wire codec consults the current
// manifest to report deprecated keys found in incoming documents.
package schema

import (
	"embed"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed generations/*.yaml
var generationFS embed.FS

// CurrentGeneration is the schema generation implemented by this module.
const CurrentGeneration = 3

// Manifest describes one schema generation.
type Manifest struct {
	Generation  int                   `yaml:"generation"`
	Description string                `yaml:"description"`
	Identifiers Identifiers           `yaml:"identifiers"`
	Entities    map[string]EntityDef `yaml:"entities"`
}

// Identifiers describes how a generation identifies accounts and devices.
type Identifiers struct {
	// AccountID is "string" or "uuid".
	AccountID               string `yaml:"accountId"`
	DeviceURNPrefix         string `yaml:"deviceUrnPrefix"`
	DeviceURNPrefixEnforced bool   `yaml:"deviceUrnPrefixEnforced"`
}

// EntityDef lists the wire keys of an entity in a generation.
type EntityDef struct {
	Fields     []string   `yaml:"fields"`
	Added      []FieldDef `yaml:"added"`
	Deprecated []FieldDef `yaml:"deprecated"`
}

// FieldDef records a change to a single key.
type FieldDef struct {
	Key         string `yaml:"key"`
	Since       int    `yaml:"since"`
	Replacement string `yaml:"replacement,omitempty"`
	Note        string `yaml:"note,omitempty"`
}

// ---------------------------------------------------------------------------
// Cache
// ---------------------------------------------------------------------------

var (
	cacheMu sync.RWMutex
	cache   = make(map[int]*Manifest)
)

// Load loads the manifest for a generation.
func Load(gen int) (*Manifest, error) {
	cacheMu.RLock()
	if m, ok := cache[gen]; ok {
		cacheMu.RUnlock()
		return m, nil
	}
	cacheMu.RUnlock()

	data, err := generationFS.ReadFile("generations/" + strconv.Itoa(gen) + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("schema generation %d not found: %w", gen, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing schema generation %d: %w", gen, err)
	}
	if m.Generation != gen {
		return nil, fmt.Errorf("schema generation file %d declares generation %d", gen, m.Generation)
	}

	cacheMu.Lock()
	cache[gen] = &m
	cacheMu.Unlock()

	return &m, nil
}

// Current loads the manifest for the current generation.
func Current() (*Manifest, error) {
	return Load(CurrentGeneration)
}

// MustCurrent is like Current but panics if the embedded manifest is broken.
func MustCurrent() *Manifest {
	m, err := Current()
	if err != nil {
		panic(err)
	}
	return m
}

// Generations returns the numbers of all embedded generations, ascending.
func Generations() ([]int, error) {
	entries, err := generationFS.ReadDir("generations")
	if err != nil {
		return nil, fmt.Errorf("reading generations directory: %w", err)
	}

	var gens []int
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".yaml")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(name)
		if err != nil {
			continue
		}
		gens = append(gens, n)
	}
	sort.Ints(gens)
	return gens, nil
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// EntityNames returns the entity names described by the manifest, sorted.
func (m *Manifest) EntityNames() []string {
	out := make([]string, 0, len(m.Entities))
	for name := range m.Entities {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Fields returns the wire keys of an entity, or nil if the entity is unknown.
func (m *Manifest) Fields(entity string) []string {
	return m.Entities[entity].Fields
}

// DeprecatedKeys returns the deprecated keys of an entity, sorted.
func (m *Manifest) DeprecatedKeys(entity string) []string {
	def, ok := m.Entities[entity]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(def.Deprecated))
	for _, d := range def.Deprecated {
		out = append(out, d.Key)
	}
	sort.Strings(out)
	return out
}

// IsDeprecated returns true if key is a deprecated key of entity.
func (m *Manifest) IsDeprecated(entity, key string) bool {
	_, ok := m.Deprecation(entity, key)
	return ok
}

// Deprecation returns the deprecation record for a key.
func (m *Manifest) Deprecation(entity, key string) (FieldDef, bool) {
	if m == nil {
		return FieldDef{}, false
	}
	for _, d := range m.Entities[entity].Deprecated {
		if d.Key == key {
			return d, true
		}
	}
	return FieldDef{}, false
}

// ---------------------------------------------------------------------------
// Document checks
// ---------------------------------------------------------------------------

// CheckResult holds the outcome of checking a document's keys against an
// entity.
type CheckResult struct {
	// Deprecated keys present in the document.
	Deprecated []string
	// Unknown keys present in the document; they are ignored on decode.
	Unknown []string
	// Missing keys listed by the manifest but absent from the document.
	// Optional fields show up here too; this is informational only.
	Missing []string
}

// Clean returns true if the document carries no deprecated or unknown keys.
func (r CheckResult) Clean() bool {
	return len(r.Deprecated) == 0 && len(r.Unknown) == 0
}

// Check compares the keys of a document against an entity.
func (m *Manifest) Check(entity string, keys []string) CheckResult {
	var result CheckResult

	def := m.Entities[entity]
	known := make(map[string]bool, len(def.Fields))
	for _, f := range def.Fields {
		known[f] = true
	}
	present := make(map[string]bool, len(keys))

	for _, k := range keys {
		present[k] = true
		switch {
		case m.IsDeprecated(entity, k):
			result.Deprecated = append(result.Deprecated, k)
		case !known[k]:
			result.Unknown = append(result.Unknown, k)
		}
	}
	for _, f := range def.Fields {
		if !present[f] {
			result.Missing = append(result.Missing, f)
		}
	}

	sort.Strings(result.Deprecated)
	sort.Strings(result.Unknown)
	return result
}

// Changes lists the keys added and deprecated between two generations, keyed
// by "Entity.key".
func Changes(from, to *Manifest) (added, removed []string) {
	for _, entity := range to.EntityNames() {
		old := make(map[string]bool)
		for _, f := range from.Fields(entity) {
			old[f] = true
		}
		for _, f := range to.Fields(entity) {
			if !old[f] {
				added = append(added, entity+"."+f)
			}
		}
	}
	for _, entity := range from.EntityNames() {
		cur := make(map[string]bool)
		for _, f := range to.Fields(entity) {
			cur[f] = true
		}
		for _, f := range from.Fields(entity) {
			if !cur[f] {
				removed = append(removed, entity+"."+f)
			}
		}
	}
	return added, removed
}
