package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageSet holds the parsed page templates. Each page is parsed together
// with the shared layout.
type pageSet struct {
	index     *template.Template
	compounds *template.Template
}

var templateFuncs = template.FuncMap{
	// num renders a float without trailing zeros (1 not 1.000000).
	"num": func(v float64) string {
		s := fmt.Sprintf("%.6f", v)
		s = strings.TrimRight(s, "0")
		return strings.TrimRight(s, ".")
	},
	// pathseg escapes a value for use as a single URL path segment, so
	// compound names containing "/" stay routable.
	"pathseg": url.PathEscape,
}

func newPageSet() (*pageSet, error) {
	parse := func(page string) (*template.Template, error) {
		return template.New("layout.html").
			Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+page)
	}

	index, err := parse("index.html")
	if err != nil {
		return nil, err
	}
	compounds, err := parse("compounds.html")
	if err != nil {
		return nil, err
	}
	return &pageSet{index: index, compounds: compounds}, nil
}

// render writes a page, logging instead of half-writing on template errors
// by rendering to a buffer first.
func render(w http.ResponseWriter, t *template.Template, data any) error {
	var buf strings.Builder
	if err := t.Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := io.WriteString(w, buf.String())
	return err
}
