package analyses

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Persona conditions which contract concerns the analysis emphasizes.
type Persona struct {
	Name  string   `yaml:"name"`
	Focus []string `yaml:"focus"`
}

// PersonaTable maps persona names (case-insensitive) to their focus areas.
type PersonaTable struct {
	byKey map[string]Persona
}

var builtinPersonas = []Persona{
	{Name: "Student", Focus: []string{"deposit returns", "guest policies", "noise rules"}},
	{Name: "Small Business", Focus: []string{"liability", "commercial use", "insurance requirements"}},
	{Name: "Senior Citizen", Focus: []string{"accessibility", "long-term stability", "health services"}},
	{Name: "General User", Focus: []string{"balanced, general-purpose advice"}},
}

// DefaultPersonas returns the built-in table.
func DefaultPersonas() *PersonaTable {
	t := &PersonaTable{byKey: make(map[string]Persona, len(builtinPersonas))}
	for _, p := range builtinPersonas {
		t.Add(p)
	}
	return t
}

type personaFile struct {
	Personas []Persona `yaml:"personas"`
}

// LoadPersonas returns the built-in table extended by the YAML file at path.
// Entries in the file replace built-ins with the same name. An empty path
// yields the defaults.
func LoadPersonas(path string) (*PersonaTable, error) {
	t := DefaultPersonas()
	if strings.TrimSpace(path) == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read personas file: %w", err)
	}
	var file personaFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse personas file %s: %w", path, err)
	}
	for i, p := range file.Personas {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("personas file %s: entry %d has no name", path, i)
		}
		t.Add(p)
	}
	return t, nil
}

// Add inserts or replaces a persona.
func (t *PersonaTable) Add(p Persona) {
	p.Name = strings.TrimSpace(p.Name)
	t.byKey[personaKey(p.Name)] = p
}

// Lookup finds a persona by name.
func (t *PersonaTable) Lookup(name string) (Persona, bool) {
	if t == nil {
		return Persona{}, false
	}
	p, ok := t.byKey[personaKey(name)]
	return p, ok
}

// Names lists the known persona names in sorted order.
func (t *PersonaTable) Names() []string {
	out := make([]string, 0, len(t.byKey))
	for _, p := range t.byKey {
		out = append(out, p.Name)
	}
	sort.Strings(out)
	return out
}

func personaKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
