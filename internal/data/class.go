package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ClassInfo holds the starting stats of a character class.
type ClassInfo struct {
	Name      string
	MaxHealth int32
	MaxMana   int32
	Ability   string // ability cast when the client names none
}

// ClassTable holds all classes indexed by name.
type ClassTable struct {
	classes map[string]*ClassInfo
}

// Get returns a class by name, or nil if not found.
func (t *ClassTable) Get(name string) *ClassInfo {
	if t == nil {
		return nil
	}
	return t.classes[name]
}

// Count returns total loaded classes.
func (t *ClassTable) Count() int {
	if t == nil {
		return 0
	}
	return len(t.classes)
}

// Each calls fn for every class.
func (t *ClassTable) Each(fn func(*ClassInfo)) {
	if t == nil {
		return
	}
	for _, c := range t.classes {
		fn(c)
	}
}

// --- YAML loading ---

type classEntry struct {
	Name      string `yaml:"name"`
	MaxHealth int32  `yaml:"max_health"`
	MaxMana   int32  `yaml:"max_mana"`
	Ability   string `yaml:"ability"`
}

type classListFile struct {
	Classes []classEntry `yaml:"classes"`
}

// LoadClassTable loads class definitions from YAML.
func LoadClassTable(path string) (*ClassTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read classes: %w", err)
	}
	return ParseClassTable(raw)
}

// ParseClassTable decodes class definitions from YAML bytes. Missing pools
// default to 100.
func ParseClassTable(raw []byte) (*ClassTable, error) {
	var f classListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse classes: %w", err)
	}
	t := &ClassTable{classes: make(map[string]*ClassInfo, len(f.Classes))}
	for i := range f.Classes {
		e := &f.Classes[i]
		if e.Name == "" {
			return nil, fmt.Errorf("parse classes: entry %d has no name", i)
		}
		c := &ClassInfo{Name: e.Name, MaxHealth: e.MaxHealth, MaxMana: e.MaxMana, Ability: e.Ability}
		if c.MaxHealth <= 0 {
			c.MaxHealth = 100
		}
		if c.MaxMana <= 0 {
			c.MaxMana = 100
		}
		t.classes[e.Name] = c
	}
	return t, nil
}
