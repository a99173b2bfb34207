package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Oskait/CoCa/internal/domain"
	"github.com/Oskait/CoCa/internal/registry"
)

// memRepo is an in-memory CompoundRepository for tests.
type memRepo struct {
	compounds []domain.Compound
}

func (m *memRepo) Load(ctx context.Context) ([]domain.Compound, error) {
	out := make([]domain.Compound, len(m.compounds))
	copy(out, m.compounds)
	return out, nil
}

func (m *memRepo) Save(ctx context.Context, compounds []domain.Compound) error {
	m.compounds = make([]domain.Compound, len(compounds))
	copy(m.compounds, compounds)
	return nil
}

func (m *memRepo) Close() error { return nil }

func newTestServer(t *testing.T, seed ...domain.Compound) *httptest.Server {
	t.Helper()
	reg, err := registry.New(context.Background(), &memRepo{compounds: seed}, nil)
	if err != nil {
		t.Fatalf("registry.New returned error: %v", err)
	}
	srv := NewServer(Config{
		Registry:        reg,
		ListenAddr:      "127.0.0.1:0",
		HTTPTimeout:     5 * time.Second,
		ShutdownTimeout: time.Second,
	})
	handler, err := srv.Handler()
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

func seedCompounds() []domain.Compound {
	return []domain.Compound{
		{Name: "NaCl", LongName: "Sodium chloride", StockConcentration: 5000, Unit: "mM", MolecularWeight: 58.44, StandardVolume: 50},
		{Name: "Glycerol", StockConcentration: 50, Unit: "% v/v"},
	}
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func TestAPICalculate(t *testing.T) {
	ts := newTestServer(t, seedCompounds()...)

	resp := postJSON(t, ts.URL+"/api/calculate", calculateRequest{
		Compound:             "nacl",
		DesiredConcentration: 150,
		DesiredFinalVolume:   10,
	})
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var got calculateResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.StockVolume != 0.3 {
		t.Errorf("StockVolume = %v, want 0.3", got.StockVolume)
	}
	if got.SolventVolume != 9.7 {
		t.Errorf("SolventVolume = %v, want 9.7", got.SolventVolume)
	}
	if got.Unit != "mM" {
		t.Errorf("Unit = %q, want mM", got.Unit)
	}
	if got.MassGrams == 0 {
		t.Error("MassGrams = 0, want mass for compound with molecular weight")
	}
}

func TestAPICalculate_ErrorStatuses(t *testing.T) {
	ts := newTestServer(t, seedCompounds()...)

	tests := []struct {
		name       string
		req        calculateRequest
		wantStatus int
	}{
		{
			name:       "infeasible dilution",
			req:        calculateRequest{Compound: "Glycerol", DesiredConcentration: 80, DesiredFinalVolume: 10},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "invalid input",
			req:        calculateRequest{StockConcentration: 0, DesiredConcentration: 5, DesiredFinalVolume: 50},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "unknown compound",
			req:        calculateRequest{Compound: "Unknown", DesiredConcentration: 5, DesiredFinalVolume: 50},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/api/calculate", tt.req)
			defer func() { _ = resp.Body.Close() }()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestAPICompoundsCRUD(t *testing.T) {
	ts := newTestServer(t)
	client := ts.Client()

	// Add.
	resp := postJSON(t, ts.URL+"/api/compounds", domain.Compound{Name: "Tris", StockConcentration: 1000, Unit: "mM"})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add status = %d, want 201", resp.StatusCode)
	}

	// Duplicate add conflicts, case-insensitively.
	resp = postJSON(t, ts.URL+"/api/compounds", domain.Compound{Name: "tris", StockConcentration: 10, Unit: "mM"})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate add status = %d, want 409", resp.StatusCode)
	}

	// Replace.
	body, _ := json.Marshal(domain.Compound{Name: "Tris", StockConcentration: 500, Unit: "mM"})
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/compounds/tris", bytes.NewReader(body))
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("replace status = %d, want 200", resp.StatusCode)
	}

	// List.
	resp, err = client.Get(ts.URL + "/api/compounds")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	var list []domain.Compound
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	_ = resp.Body.Close()
	if len(list) != 1 || list[0].StockConcentration != 500 {
		t.Fatalf("list = %v, want one Tris at 500", list)
	}

	// Remove.
	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/api/compounds/Tris", nil)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("remove status = %d, want 204", resp.StatusCode)
	}

	// Removing again is a 404.
	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/api/compounds/Tris", nil)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second remove status = %d, want 404", resp.StatusCode)
	}
}

func TestAPIImport(t *testing.T) {
	ts := newTestServer(t, domain.Compound{Name: "NaCl", StockConcentration: 100, Unit: "mM"})

	resp := postJSON(t, ts.URL+"/api/compounds/import", importRequest{Compounds: []domain.Compound{
		{Name: "nacl", StockConcentration: 150, Unit: "mM"},
		{Name: "EDTA", StockConcentration: 500, Unit: "mM"},
	}})
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import status = %d, want 200", resp.StatusCode)
	}
	var got importResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Applied != 2 {
		t.Errorf("Applied = %d, want 2", got.Applied)
	}
}

func getBody(t *testing.T, ts *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := ts.Client().Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(b)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func TestIndexPage(t *testing.T) {
	ts := newTestServer(t)
	status, body := getBody(t, ts, "/")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if !strings.Contains(body, "No compounds registered") {
		t.Error("empty registry page missing warning")
	}

	ts = newTestServer(t, seedCompounds()...)
	status, body = getBody(t, ts, "/")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if !strings.Contains(body, "NaCl (Sodium chloride)") {
		t.Error("selector missing compound display name")
	}
}

func TestCalculateForm(t *testing.T) {
	ts := newTestServer(t, seedCompounds()...)

	form := url.Values{
		"compound":              {"NaCl"},
		"desired_concentration": {"150"},
		"desired_final_volume":  {"10"},
		"actual_mass_mg":        {"90"},
	}
	resp, err := ts.Client().PostForm(ts.URL+"/calculate", form)
	if err != nil {
		t.Fatalf("POST form: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Stock volume") {
		t.Error("result missing stock volume")
	}
	if !strings.Contains(body, "Required mass") {
		t.Error("result missing required mass for compound with molecular weight")
	}
	if !strings.Contains(body, "Volume for weigh-in") {
		t.Error("result missing weigh-in volume")
	}
}

func TestCalculateForm_InfeasibleShowsMessage(t *testing.T) {
	ts := newTestServer(t, domain.Compound{Name: "Glycerol", StockConcentration: 50, Unit: "% v/v"})

	form := url.Values{
		"compound":              {"Glycerol"},
		"desired_concentration": {"80"},
		"desired_final_volume":  {"10"},
	}
	resp, err := ts.Client().PostForm(ts.URL+"/calculate", form)
	if err != nil {
		t.Fatalf("POST form: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 (form errors stay on the page)", resp.StatusCode)
	}
	if !strings.Contains(readBody(t, resp), "desired concentration exceeds stock") {
		t.Error("page missing infeasible dilution message")
	}
}

func TestCalculateForm_EmptyRegistryShowsMessage(t *testing.T) {
	ts := newTestServer(t)

	form := url.Values{
		"compound":              {"NaCl"},
		"desired_concentration": {"150"},
		"desired_final_volume":  {"10"},
	}
	resp, err := ts.Client().PostForm(ts.URL+"/calculate", form)
	if err != nil {
		t.Fatalf("POST form: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "compound not found") {
		t.Error("page missing not-found message on empty registry")
	}
	if !strings.Contains(body, "No compounds registered") {
		t.Error("page missing empty-registry warning")
	}
}

func TestCompoundFormAddAndDelete(t *testing.T) {
	ts := newTestServer(t)
	client := ts.Client()
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	form := url.Values{
		"name":                {"KCl"},
		"stock_concentration": {"200"},
		"unit":                {"mM"},
	}
	resp, err := client.PostForm(ts.URL+"/compounds", form)
	if err != nil {
		t.Fatalf("POST form: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("add status = %d, want 303", resp.StatusCode)
	}

	resp, err = client.PostForm(ts.URL+"/compounds/KCl/delete", url.Values{})
	if err != nil {
		t.Fatalf("POST delete: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("delete status = %d, want 303", resp.StatusCode)
	}

	status, body := getBody(t, ts, "/compounds")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if !strings.Contains(body, "No compounds registered yet") {
		t.Error("compounds page should be empty after delete")
	}
}

// Names containing "/" must stay addressable: the pages escape the name in
// route URLs and the handlers decode it back.
func TestCompoundNameWithSlash(t *testing.T) {
	ts := newTestServer(t)
	client := ts.Client()
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp := postJSON(t, ts.URL+"/api/compounds", domain.Compound{Name: "NAD+/NADH", StockConcentration: 10, Unit: "mM"})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add status = %d, want 201", resp.StatusCode)
	}

	escaped := url.PathEscape("NAD+/NADH")
	status, body := getBody(t, ts, "/compounds")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if !strings.Contains(body, "/compounds/"+escaped+"/delete") {
		t.Errorf("delete form action not escaped, body has no %q", "/compounds/"+escaped+"/delete")
	}

	// Replace through the escaped API route.
	payload, _ := json.Marshal(domain.Compound{Name: "NAD+/NADH", StockConcentration: 25, Unit: "mM"})
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/compounds/"+escaped, bytes.NewReader(payload))
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("replace status = %d, want 200", resp.StatusCode)
	}

	// Delete through the rendered form action.
	resp, err = client.PostForm(ts.URL+"/compounds/"+escaped+"/delete", url.Values{})
	if err != nil {
		t.Fatalf("POST delete: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("delete status = %d, want 303", resp.StatusCode)
	}

	// And the API route for good measure.
	resp = postJSON(t, ts.URL+"/api/compounds", domain.Compound{Name: "NAD+/NADH", StockConcentration: 10, Unit: "mM"})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("re-add status = %d, want 201", resp.StatusCode)
	}
	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/api/compounds/"+escaped, nil)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("remove status = %d, want 204", resp.StatusCode)
	}
}
