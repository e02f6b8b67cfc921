package ft3

import (
	"sort"

	"github.com/elchacal801/flame-fraud/internal/core/domain"
)

// Catalog is the FT3 reference data for one run. It is never mutated
// after construction.
type Catalog struct {
	tactics       []domain.Tactic
	techniques    []domain.Technique
	tacticByName  map[string]string
	techniqueByID map[string]domain.Technique
}

func NewCatalog(tactics []domain.Tactic, techniques []domain.Technique) *Catalog {
	c := &Catalog{
		tactics:       tactics,
		techniques:    techniques,
		tacticByName:  make(map[string]string, len(tactics)),
		techniqueByID: make(map[string]domain.Technique, len(techniques)),
	}
	for _, t := range tactics {
		c.tacticByName[t.Name] = t.ID
	}
	for _, t := range techniques {
		if _, dup := c.techniqueByID[t.ID]; !dup {
			c.techniqueByID[t.ID] = t
		}
	}
	return c
}

func (c *Catalog) Tactics() []domain.Tactic {
	return c.tactics
}

func (c *Catalog) Techniques() []domain.Technique {
	return c.techniques
}

// TacticID resolves a tactic name as written in the techniques file.
func (c *Catalog) TacticID(name string) (string, bool) {
	id, ok := c.tacticByName[name]
	return id, ok
}

func (c *Catalog) Technique(id string) (domain.Technique, bool) {
	t, ok := c.techniqueByID[id]
	return t, ok
}

// UnmappedTacticNames lists, sorted, the tactic names referenced by
// techniques that have no entry in the tactics file.
func (c *Catalog) UnmappedTacticNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, t := range c.techniques {
		for _, name := range t.Tactics {
			if name == "" || seen[name] {
				continue
			}
			if _, ok := c.tacticByName[name]; ok {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
