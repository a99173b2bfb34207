package web

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Oskait/CoCa/internal/domain"
	"github.com/Oskait/CoCa/pkg/log"
)

// calcForm echoes the calculator inputs back into the form.
type calcForm struct {
	DesiredConcentration string
	DesiredFinalVolume   string
	ActualMassMg         string
}

// calcResult holds one completed calculation for display.
type calcResult struct {
	StockVolume   float64
	SolventVolume float64

	MassGrams      float64
	MassMilligrams float64
	HasMass        bool

	WeighInVolume float64
	HasWeighIn    bool
}

type indexView struct {
	Compounds []domain.Compound
	Selected  domain.Compound
	Form      calcForm
	Result    *calcResult
	Error     string
}

type compoundsView struct {
	Compounds []domain.Compound
	Editing   *domain.Compound
	Error     string
}

func (s *Server) handleIndex(pages *pageSet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := s.indexViewFor(r.URL.Query().Get("compound"))
		s.renderPage(w, pages.index, view)
	}
}

// indexViewFor builds the calculator view with the named compound selected
// (first compound when name is empty or unknown) and the form prefilled
// from the compound's stock concentration and standard volume.
func (s *Server) indexViewFor(name string) indexView {
	view := indexView{Compounds: s.registry.List()}
	if len(view.Compounds) == 0 {
		return view
	}

	view.Selected = view.Compounds[0]
	if name != "" {
		if c, err := s.registry.Find(name); err == nil {
			view.Selected = c
		}
	}

	view.Form.DesiredConcentration = formatNum(view.Selected.StockConcentration)
	if view.Selected.StandardVolume > 0 {
		view.Form.DesiredFinalVolume = formatNum(view.Selected.StandardVolume)
	}
	return view
}

func (s *Server) handleCalculate(pages *pageSet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}

		name := r.PostFormValue("compound")
		view := s.indexViewFor(name)
		view.Form = calcForm{
			DesiredConcentration: r.PostFormValue("desired_concentration"),
			DesiredFinalVolume:   r.PostFormValue("desired_final_volume"),
			ActualMassMg:         r.PostFormValue("actual_mass_mg"),
		}

		compound, err := s.registry.Find(name)
		if err != nil {
			view.Error = userMessage(err)
			s.renderPage(w, pages.index, view)
			return
		}

		result, err := s.calculate(compound, view.Form)
		if err != nil {
			view.Error = userMessage(err)
			s.renderPage(w, pages.index, view)
			return
		}
		view.Result = result
		s.renderPage(w, pages.index, view)
	}
}

// calculate runs the dilution and, when the compound has a molecular
// weight, the solution-prep arithmetic for the same targets.
func (s *Server) calculate(compound domain.Compound, form calcForm) (*calcResult, error) {
	desired, err := parseNum("target concentration", form.DesiredConcentration)
	if err != nil {
		return nil, err
	}
	volume, err := parseNum("target volume", form.DesiredFinalVolume)
	if err != nil {
		return nil, err
	}

	req := domain.DilutionRequest{
		StockConcentration:   compound.StockConcentration,
		DesiredConcentration: desired,
		DesiredFinalVolume:   volume,
	}
	stockVol, err := req.StockVolume()
	if err != nil {
		return nil, err
	}

	result := &calcResult{
		StockVolume:   stockVol,
		SolventVolume: volume - stockVol,
	}

	if compound.MolecularWeight > 0 {
		mass, err := domain.MassForSolution(desired, volume, compound.MolecularWeight)
		if err != nil {
			return nil, err
		}
		result.MassGrams = mass
		result.MassMilligrams = mass * 1000
		result.HasMass = true

		if strings.TrimSpace(form.ActualMassMg) != "" {
			massMg, err := parseNum("weigh-in mass", form.ActualMassMg)
			if err != nil {
				return nil, err
			}
			weighInVol, err := domain.VolumeForMass(massMg/1000, desired, compound.MolecularWeight)
			if err != nil {
				return nil, err
			}
			result.WeighInVolume = weighInVol
			result.HasWeighIn = true
		}
	}

	return result, nil
}

func (s *Server) handleCompounds(pages *pageSet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := compoundsView{Compounds: s.registry.List()}
		if name := r.URL.Query().Get("edit"); name != "" {
			if c, err := s.registry.Find(name); err == nil {
				view.Editing = &c
			}
		}
		s.renderPage(w, pages.compounds, view)
	}
}

func (s *Server) handleCompoundAdd(pages *pageSet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		compound, err := compoundFromForm(r)
		if err == nil {
			err = s.registry.Add(r.Context(), compound)
		}
		if err != nil {
			view := compoundsView{Compounds: s.registry.List(), Error: userMessage(err)}
			s.renderPage(w, pages.compounds, view)
			return
		}
		http.Redirect(w, r, "/compounds", http.StatusSeeOther)
	}
}

func (s *Server) handleCompoundReplace(pages *pageSet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := pathName(r)
		compound, err := compoundFromForm(r)
		if err == nil {
			err = s.registry.Replace(r.Context(), name, compound)
		}
		if err != nil {
			view := compoundsView{Compounds: s.registry.List(), Error: userMessage(err)}
			s.renderPage(w, pages.compounds, view)
			return
		}
		http.Redirect(w, r, "/compounds", http.StatusSeeOther)
	}
}

func (s *Server) handleCompoundDelete(pages *pageSet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := pathName(r)
		if err := s.registry.Remove(r.Context(), name); err != nil {
			view := compoundsView{Compounds: s.registry.List(), Error: userMessage(err)}
			s.renderPage(w, pages.compounds, view)
			return
		}
		http.Redirect(w, r, "/compounds", http.StatusSeeOther)
	}
}

// pathName returns the decoded {name} route parameter. Compound names may
// contain "/", which arrives percent-escaped and which chi hands back
// still-encoded.
func pathName(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

// compoundFromForm builds a Compound from the management form. Field
// validation is the domain's job; this only parses the numbers.
func compoundFromForm(r *http.Request) (domain.Compound, error) {
	if err := r.ParseForm(); err != nil {
		return domain.Compound{}, fmt.Errorf("%w: malformed form", domain.ErrInvalidInput)
	}
	c := domain.Compound{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		LongName: strings.TrimSpace(r.PostFormValue("longname")),
		Unit:     strings.TrimSpace(r.PostFormValue("unit")),
	}
	var err error
	if c.StockConcentration, err = parseNum("stock concentration", r.PostFormValue("stock_concentration")); err != nil {
		return domain.Compound{}, err
	}
	if c.MolecularWeight, err = parseOptionalNum("molecular weight", r.PostFormValue("molecular_weight")); err != nil {
		return domain.Compound{}, err
	}
	if c.StandardVolume, err = parseOptionalNum("standard volume", r.PostFormValue("standard_volume")); err != nil {
		return domain.Compound{}, err
	}
	return c, nil
}

// parseNum parses a required numeric form field.
func parseNum(field, value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, field)
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not a number", domain.ErrInvalidInput, field)
	}
	return f, nil
}

// parseOptionalNum parses a numeric form field that may be left blank.
func parseOptionalNum(field, value string) (float64, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	return parseNum(field, value)
}

// userMessage converts a domain error into user-facing text.
func userMessage(err error) string {
	return strings.TrimPrefix(err.Error(), "coca: ")
}

// renderPage writes a page, turning template failures into a 500 with a log
// line rather than a half-written response.
func (s *Server) renderPage(w http.ResponseWriter, t *template.Template, data any) {
	if err := render(w, t, data); err != nil {
		s.logger.Error("render page", log.Err(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// formatNum renders a float without trailing zeros, for form prefills.
func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
