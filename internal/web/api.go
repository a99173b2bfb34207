package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Oskait/CoCa/internal/domain"
	"github.com/Oskait/CoCa/pkg/log"
)

// apiError is the JSON error envelope.
type apiError struct {
	Error string `json:"error"`
}

// calculateRequest is the JSON body for POST /api/calculate. Either name a
// registered compound or pass stock_concentration directly.
type calculateRequest struct {
	Compound             string  `json:"compound,omitempty"`
	StockConcentration   float64 `json:"stock_concentration,omitempty"`
	DesiredConcentration float64 `json:"desired_concentration"`
	DesiredFinalVolume   float64 `json:"desired_final_volume"`
	ActualMassMg         float64 `json:"actual_mass_mg,omitempty"`
}

type calculateResponse struct {
	StockVolume   float64 `json:"stock_volume"`
	SolventVolume float64 `json:"solvent_volume"`
	Unit          string  `json:"unit,omitempty"`

	MassGrams     float64 `json:"mass_g,omitempty"`
	WeighInVolume float64 `json:"weigh_in_volume_ml,omitempty"`
}

type importRequest struct {
	Compounds []domain.Compound `json:"compounds"`
}

type importResponse struct {
	Applied int `json:"applied"`
}

func (s *Server) apiListCompounds(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.registry.List())
}

func (s *Server) apiAddCompound(w http.ResponseWriter, r *http.Request) {
	var c domain.Compound
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		s.writeJSON(w, http.StatusBadRequest, apiError{Error: "malformed JSON"})
		return
	}
	if err := s.registry.Add(r.Context(), c); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, c)
}

func (s *Server) apiReplaceCompound(w http.ResponseWriter, r *http.Request) {
	var c domain.Compound
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		s.writeJSON(w, http.StatusBadRequest, apiError{Error: "malformed JSON"})
		return
	}
	if err := s.registry.Replace(r.Context(), pathName(r), c); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) apiRemoveCompound(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Remove(r.Context(), pathName(r)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiImportCompounds(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, apiError{Error: "malformed JSON"})
		return
	}
	applied, err := s.registry.Import(r.Context(), req.Compounds)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, importResponse{Applied: applied})
}

func (s *Server) apiCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, apiError{Error: "malformed JSON"})
		return
	}

	stock := req.StockConcentration
	var compound domain.Compound
	if req.Compound != "" {
		var err error
		compound, err = s.registry.Find(req.Compound)
		if err != nil {
			s.writeError(w, err)
			return
		}
		stock = compound.StockConcentration
	}

	dilution := domain.DilutionRequest{
		StockConcentration:   stock,
		DesiredConcentration: req.DesiredConcentration,
		DesiredFinalVolume:   req.DesiredFinalVolume,
	}
	stockVol, err := dilution.StockVolume()
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := calculateResponse{
		StockVolume:   stockVol,
		SolventVolume: req.DesiredFinalVolume - stockVol,
		Unit:          compound.Unit,
	}

	if compound.MolecularWeight > 0 {
		mass, err := domain.MassForSolution(req.DesiredConcentration, req.DesiredFinalVolume, compound.MolecularWeight)
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp.MassGrams = mass

		if req.ActualMassMg > 0 {
			vol, err := domain.VolumeForMass(req.ActualMassMg/1000, req.DesiredConcentration, compound.MolecularWeight)
			if err != nil {
				s.writeError(w, err)
				return
			}
			resp.WeighInVolume = vol
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// writeError maps domain errors onto HTTP statuses:
// invalid input and infeasible dilutions are 422, duplicates 409,
// missing compounds 404. Anything else is a 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInfeasibleDilution):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrDuplicateName):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("api request failed", log.Err(err))
	}
	s.writeJSON(w, status, apiError{Error: userMessage(err)})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", log.Err(err))
	}
}
