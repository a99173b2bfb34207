package domain

import (
	"fmt"
	"strings"
)

// Compound is a named chemical entity with an associated stock concentration.
// The registry owns all Compound records; callers receive copies.
type Compound struct {
	// Name is the short identifier shown in the compound selector
	// (e.g. "NaCl"). Unique within a registry, compared case-insensitively.
	Name string `json:"name"`

	// LongName is an optional descriptive name (e.g. "Sodium chloride").
	LongName string `json:"longname,omitempty"`

	// StockConcentration is the concentration of the stock solution,
	// expressed in Unit. Must be positive.
	StockConcentration float64 `json:"stock_concentration"`

	// Unit is the concentration unit label (e.g. "mM", "mg/mL").
	// Units are opaque strings; no conversion is performed.
	Unit string `json:"unit"`

	// MolecularWeight in g/mol. Zero means unknown; mass calculations
	// are skipped for such compounds.
	MolecularWeight float64 `json:"molecular_weight,omitempty"`

	// StandardVolume is the usual prep volume in mL, used to prefill the
	// calculator form. Zero means unset.
	StandardVolume float64 `json:"standard_volume,omitempty"`
}

// Key returns the canonical lookup key for a compound name.
// Names differing only in case or surrounding whitespace collide.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Key returns the compound's canonical lookup key.
func (c Compound) Key() string {
	return Key(c.Name)
}

// Validate checks the compound for presence and positivity.
func (c Compound) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: compound name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(c.Unit) == "" {
		return fmt.Errorf("%w: concentration unit is required", ErrInvalidInput)
	}
	if !isPositive(c.StockConcentration) {
		return fmt.Errorf("%w: stock concentration must be a positive number", ErrInvalidInput)
	}
	if c.MolecularWeight != 0 && !isPositive(c.MolecularWeight) {
		return fmt.Errorf("%w: molecular weight must be a positive number", ErrInvalidInput)
	}
	if c.StandardVolume != 0 && !isPositive(c.StandardVolume) {
		return fmt.Errorf("%w: standard volume must be a positive number", ErrInvalidInput)
	}
	return nil
}

// Display returns the label shown in the compound selector: the short name,
// followed by the long name in parentheses when it adds information.
func (c Compound) Display() string {
	long := strings.TrimSpace(c.LongName)
	if long == "" || long == c.Name {
		return c.Name
	}
	return fmt.Sprintf("%s (%s)", c.Name, long)
}
