package report

import (
	_ "embed"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

//go:embed templates/report.md.tmpl
var markdownTemplate string

var mdTemplate = template.Must(template.New("report.md").
	Funcs(sprig.TxtFuncMap()).
	Funcs(template.FuncMap(funcMap())).
	Funcs(template.FuncMap{"inline": sanitizeInline}).
	Parse(markdownTemplate))

func renderMarkdown(w io.Writer, d document) error {
	if err := mdTemplate.Execute(w, d); err != nil {
		return fmt.Errorf("render markdown export: %w", err)
	}
	return nil
}

// sanitizeInline keeps free text on one markdown line.
func sanitizeInline(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
