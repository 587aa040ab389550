package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"

	"github.com/Masterminds/sprig/v3"

	"auditor/internal/badge"
)

//go:embed templates/report.html.tmpl
var htmlTemplateText string

var htmlTemplate = template.Must(template.New("report.html").
	Funcs(sprig.FuncMap()).
	Funcs(funcMap()).
	Funcs(template.FuncMap{
		"gaugeSVG": func(score int) template.HTML {
			// RenderGaugeSVG only interpolates numbers and fixed colors.
			return template.HTML(badge.RenderGaugeSVG(score))
		},
	}).
	Parse(htmlTemplateText))

func renderHTML(w io.Writer, d document) error {
	if err := htmlTemplate.Execute(w, d); err != nil {
		return fmt.Errorf("render html export: %w", err)
	}
	return nil
}

// funcMap exposes the badge mapping to templates.
func funcMap() map[string]any {
	return map[string]any{
		"levelName":  func(label string) string { return badge.LevelClass(label).Name },
		"levelHex":   func(label string) string { return badge.LevelClass(label).Hex },
		"levelFg":    func(label string) string { return badge.LevelClass(label).Foreground },
		"levelCSS":   func(label string) string { return badge.LevelClass(label).CSS },
		"alert":      func(score int) string { return string(badge.ScoreClass(score)) },
		"alertHex":   func(score int) string { return badge.ScoreClass(score).Hex() },
		"dashOffset": func(score int) string { return fmt.Sprintf("%.2f", badge.Gauge(score).DashOffset) },
	}
}
