package data

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// AbilityInfo holds a single projectile ability template.
type AbilityInfo struct {
	Name         string
	Speed        float64
	Damage       int32
	Range        float64       // 0 = unbounded
	Lifetime     time.Duration // 0 = unbounded
	Cooldown     time.Duration
	MuzzleOffset [3]float64 // side, up, forward
}

// AbilityTable holds all abilities indexed by name.
type AbilityTable struct {
	abilities map[string]*AbilityInfo
}

// Get returns an ability by name, or nil if not found.
func (t *AbilityTable) Get(name string) *AbilityInfo {
	if t == nil {
		return nil
	}
	return t.abilities[name]
}

// Count returns total loaded abilities.
func (t *AbilityTable) Count() int {
	if t == nil {
		return 0
	}
	return len(t.abilities)
}

// Names returns the ability names in sorted order.
func (t *AbilityTable) Names() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.abilities))
	for name := range t.abilities {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// --- YAML loading ---

type abilityEntry struct {
	Name         string     `yaml:"name"`
	Speed        float64    `yaml:"speed"`
	Damage       int32      `yaml:"damage"`
	Range        float64    `yaml:"range"`
	LifetimeMs   int        `yaml:"lifetime_ms"`
	CooldownMs   int        `yaml:"cooldown_ms"`
	MuzzleOffset [3]float64 `yaml:"muzzle_offset"`
}

type abilityListFile struct {
	Abilities []abilityEntry `yaml:"abilities"`
}

// LoadAbilityTable loads ability definitions from YAML.
func LoadAbilityTable(path string) (*AbilityTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read abilities: %w", err)
	}
	return ParseAbilityTable(raw)
}

// ParseAbilityTable decodes ability definitions from YAML bytes.
func ParseAbilityTable(raw []byte) (*AbilityTable, error) {
	var f abilityListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse abilities: %w", err)
	}
	t := &AbilityTable{abilities: make(map[string]*AbilityInfo, len(f.Abilities))}
	for i := range f.Abilities {
		e := &f.Abilities[i]
		if e.Name == "" {
			return nil, fmt.Errorf("parse abilities: entry %d has no name", i)
		}
		if e.Speed <= 0 {
			return nil, fmt.Errorf("parse abilities: %s: speed must be positive", e.Name)
		}
		if _, dup := t.abilities[e.Name]; dup {
			return nil, fmt.Errorf("parse abilities: duplicate ability %q", e.Name)
		}
		t.abilities[e.Name] = &AbilityInfo{
			Name:         e.Name,
			Speed:        e.Speed,
			Damage:       e.Damage,
			Range:        e.Range,
			Lifetime:     time.Duration(e.LifetimeMs) * time.Millisecond,
			Cooldown:     time.Duration(e.CooldownMs) * time.Millisecond,
			MuzzleOffset: e.MuzzleOffset,
		}
	}
	return t, nil
}
