package catalog

import (
	"encoding/json"
	"os"
)

// OfferedProgram is a single entry from the institution's training catalog.
// Created once per run by the catalog collector and never mutated afterwards.
// NormalizedName exists only for comparison and must never be shown to users.
type OfferedProgram struct {
	Name           string `json:"name"`
	NormalizedName string `json:"normalized_name"`
}

// Programs is the catalog snapshot for one run.
type Programs struct {
	Items []*OfferedProgram
}

// NewProgram builds an OfferedProgram with its derived normalized form.
func NewProgram(name string) *OfferedProgram {
	return &OfferedProgram{
		Name:           name,
		NormalizedName: Normalize(name),
	}
}

// FromNames builds a catalog snapshot from raw program names.
func FromNames(names []string) *Programs {
	p := &Programs{}
	for _, name := range names {
		p.Items = append(p.Items, NewProgram(name))
	}
	return p
}

func (p *Programs) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Items)
}

func (p *Programs) Names() []string {
	names := make([]string, 0, p.Len())
	for _, item := range p.Items {
		names = append(names, item.Name)
	}
	return names
}

func (p *Programs) FindByName(name string) *OfferedProgram {
	normalized := Normalize(name)
	for _, item := range p.Items {
		if item.NormalizedName == normalized {
			return item
		}
	}
	return nil
}

// DumpToTmpFile writes the catalog snapshot to a temporary JSON file and
// returns its path.
func (p *Programs) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "catalog_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}
