package taxonomy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML form of a taxonomy override. Terms listed here extend
// the built-in tables; a term whose text already exists replaces the
// built-in classification.
type File struct {
	Name        string `yaml:"name"`
	Ownership   []Term `yaml:"ownership,omitempty"`
	Encumbrance []Term `yaml:"encumbrance,omitempty"`
}

// Validate checks every term names a known right type and risk level.
func (file *File) Validate() error {
	sections := []struct {
		label string
		terms []Term
	}{
		{"ownership", file.Ownership},
		{"encumbrance", file.Encumbrance},
	}

	for _, section := range sections {
		for termIndex, term := range section.terms {
			if term.Text == "" {
				return fmt.Errorf("%s term %d: empty term text", section.label, termIndex)
			}
			if !term.Right.Valid() || term.Right == RightOther {
				return fmt.Errorf("%s term %q: %w: %q", section.label, term.Text, ErrUnknownRightType, term.Right)
			}
			if !term.Risk.Valid() {
				return fmt.Errorf("%s term %q: %w: %q", section.label, term.Text, ErrUnknownRiskLevel, term.Risk)
			}
		}
	}
	return nil
}

// Parse decodes a YAML override and merges it over the built-in tables.
func Parse(data []byte) (*Taxonomy, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if err := file.Validate(); err != nil {
		return nil, fmt.Errorf("invalid taxonomy: %w", err)
	}

	name := file.Name
	if name == "" {
		name = "custom"
	}

	return &Taxonomy{
		Name:        name,
		Ownership:   defaultTaxonomy.Ownership.Extend(file.Ownership),
		Encumbrance: defaultTaxonomy.Encumbrance.Extend(file.Encumbrance),
	}, nil
}

// LoadFile reads a YAML override file.
func LoadFile(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	taxonomy, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return taxonomy, nil
}

// ToYAML serializes the full taxonomy in match order.
func (taxonomy *Taxonomy) ToYAML() ([]byte, error) {
	file := File{
		Name:        taxonomy.Name,
		Ownership:   taxonomy.Ownership.Terms(),
		Encumbrance: taxonomy.Encumbrance.Terms(),
	}
	return yaml.Marshal(&file)
}
