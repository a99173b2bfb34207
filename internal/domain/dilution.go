package domain

import (
	"fmt"
	"math"
)

// DilutionRequest describes a single C1V1 = C2V2 calculation.
// It is transient: constructed per calculation, never persisted.
type DilutionRequest struct {
	// StockConcentration is C1, the concentration of the source solution.
	StockConcentration float64

	// DesiredConcentration is C2, the target concentration. Must not
	// exceed StockConcentration.
	DesiredConcentration float64

	// DesiredFinalVolume is V2, the total volume after dilution.
	DesiredFinalVolume float64
}

// Validate checks the request inputs. All three values must be finite and
// positive, and the desired concentration must not exceed the stock
// concentration (a dilution cannot concentrate).
func (r DilutionRequest) Validate() error {
	if !isPositive(r.StockConcentration) {
		return fmt.Errorf("%w: stock concentration must be a positive number", ErrInvalidInput)
	}
	if !isPositive(r.DesiredConcentration) {
		return fmt.Errorf("%w: desired concentration must be a positive number", ErrInvalidInput)
	}
	if !isPositive(r.DesiredFinalVolume) {
		return fmt.Errorf("%w: desired final volume must be a positive number", ErrInvalidInput)
	}
	if r.DesiredConcentration > r.StockConcentration {
		return fmt.Errorf("%w: %g > %g", ErrInfeasibleDilution, r.DesiredConcentration, r.StockConcentration)
	}
	return nil
}

// StockVolume returns V1, the volume of stock solution to dilute up to
// DesiredFinalVolume. For valid requests the result is positive and never
// exceeds DesiredFinalVolume; equal concentrations yield the full volume.
func (r DilutionRequest) StockVolume() (float64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	return r.DesiredConcentration * r.DesiredFinalVolume / r.StockConcentration, nil
}

// SolventVolume returns V2 - V1, the volume of solvent to add.
func (r DilutionRequest) SolventVolume() (float64, error) {
	v1, err := r.StockVolume()
	if err != nil {
		return 0, err
	}
	return r.DesiredFinalVolume - v1, nil
}

// MassForSolution returns the mass in grams of powder needed to prepare a
// solution of the given molar concentration (mM) and volume (mL) for a
// compound with the given molecular weight (g/mol).
func MassForSolution(concentrationMilliMolar, volumeMilliliters, molecularWeight float64) (float64, error) {
	if !isPositive(concentrationMilliMolar) {
		return 0, fmt.Errorf("%w: concentration must be a positive number", ErrInvalidInput)
	}
	if !isPositive(volumeMilliliters) {
		return 0, fmt.Errorf("%w: volume must be a positive number", ErrInvalidInput)
	}
	if !isPositive(molecularWeight) {
		return 0, fmt.Errorf("%w: molecular weight must be a positive number", ErrInvalidInput)
	}
	molar := concentrationMilliMolar / 1000.0
	liters := volumeMilliliters / 1000.0
	return molar * liters * molecularWeight, nil
}

// VolumeForMass returns the volume in mL that dissolves the given mass in
// grams to the given molar concentration (mM). This is the weigh-in
// adjustment: after weighing an actual mass, it yields the volume that hits
// the target concentration exactly.
func VolumeForMass(massGrams, concentrationMilliMolar, molecularWeight float64) (float64, error) {
	if !isPositive(massGrams) {
		return 0, fmt.Errorf("%w: mass must be a positive number", ErrInvalidInput)
	}
	if !isPositive(concentrationMilliMolar) {
		return 0, fmt.Errorf("%w: concentration must be a positive number", ErrInvalidInput)
	}
	if !isPositive(molecularWeight) {
		return 0, fmt.Errorf("%w: molecular weight must be a positive number", ErrInvalidInput)
	}
	moles := massGrams / molecularWeight
	liters := moles / (concentrationMilliMolar / 1000.0)
	return liters * 1000.0, nil
}

// isPositive reports whether v is a finite number greater than zero.
func isPositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
