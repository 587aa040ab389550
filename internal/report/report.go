// Package report exports a fresh analysis or a stored project as text,
// markdown, JSON, YAML or HTML. All formats go through the same badge
// mapping as the live views.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"auditor/internal/audit"
	"auditor/internal/redact"
	"auditor/internal/safefile"
)

type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatHTML     Format = "html"
)

var Formats = []Format{FormatText, FormatMarkdown, FormatJSON, FormatYAML, FormatHTML}

// ParseFormat accepts the canonical names plus txt, md and yml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (use text, markdown, json, yaml or html)", s)
	}
}

// FormatForPath guesses the export format from a file extension.
func FormatForPath(path string) (Format, bool) {
	i := strings.LastIndex(path, ".")
	if i < 0 || i == len(path)-1 {
		return "", false
	}
	f, err := ParseFormat(path[i+1:])
	if err != nil {
		return "", false
	}
	return f, true
}

type Options struct {
	// Locale drives date display, e.g. tr-TR or en-US.
	Locale string
	// Width of the text gauge in cells.
	GaugeWidth int
	// Unredacted keeps backend text as returned. Live views set it so the
	// terminal shows the same text as the web pages; exports leave it off.
	Unredacted bool
}

func (o Options) scrub(s string) string {
	if o.Unredacted {
		return s
	}
	return redact.Text(s)
}

func (o Options) scrubRisks(in []audit.RiskItem) []audit.RiskItem {
	if o.Unredacted {
		return in
	}
	return redactRisks(in)
}

func (o Options) locale() string {
	if strings.TrimSpace(o.Locale) == "" {
		return audit.DefaultLocale
	}
	return o.Locale
}

func (o Options) gaugeWidth() int {
	if o.GaugeWidth <= 0 {
		return 20
	}
	return o.GaugeWidth
}

// document is the format-neutral view of what gets exported.
type document struct {
	Title       string
	ID          string
	Description string
	Date        string
	Score       int
	Level       string
	Summary     string
	Risks       []audit.RiskItem
}

func reportDocument(r audit.AuditReport, opts Options) document {
	return document{
		Title:   titleOr(r.ProjectName),
		Score:   r.OverallRiskScore,
		Level:   r.RiskLevel,
		Summary: opts.scrub(r.Summary),
		Risks:   opts.scrubRisks(r.Risks),
	}
}

func projectDocument(p audit.StoredProject, opts Options) document {
	d := reportDocument(p.Report(), opts)
	d.ID = p.ID
	d.Description = opts.scrub(p.Description)
	d.Date = audit.FormatDate(p.CreatedAt, opts.locale())
	return d
}

// Render writes a fresh analysis result in format f.
func Render(w io.Writer, f Format, r audit.AuditReport, opts Options) error {
	if f == FormatJSON || f == FormatYAML {
		r.Summary = opts.scrub(r.Summary)
		r.Risks = opts.scrubRisks(r.Risks)
		return encode(w, f, r)
	}
	return renderDocument(w, f, reportDocument(r, opts), opts)
}

// RenderProject writes a stored project, with its id and date, in format f.
func RenderProject(w io.Writer, f Format, p audit.StoredProject, opts Options) error {
	if f == FormatJSON || f == FormatYAML {
		p.Description = opts.scrub(p.Description)
		p.AuditReport.Summary = opts.scrub(p.AuditReport.Summary)
		p.AuditReport.Risks = opts.scrubRisks(p.AuditReport.Risks)
		return encode(w, f, p)
	}
	return renderDocument(w, f, projectDocument(p, opts), opts)
}

// WriteReport renders r to path through an atomic, symlink-safe write.
func WriteReport(path string, f Format, r audit.AuditReport, opts Options) error {
	var buf bytes.Buffer
	if err := Render(&buf, f, r, opts); err != nil {
		return err
	}
	return writeFile(path, f, buf.Bytes())
}

func WriteProject(path string, f Format, p audit.StoredProject, opts Options) error {
	var buf bytes.Buffer
	if err := RenderProject(&buf, f, p, opts); err != nil {
		return err
	}
	return writeFile(path, f, buf.Bytes())
}

func writeFile(path string, f Format, data []byte) error {
	if err := safefile.WriteFileAtomic(path, data, safefile.PrivateMode); err != nil {
		return fmt.Errorf("write %s export: %w", f, err)
	}
	return nil
}

func renderDocument(w io.Writer, f Format, d document, opts Options) error {
	switch f {
	case FormatText:
		_, err := io.WriteString(w, renderText(d, opts))
		return err
	case FormatMarkdown:
		return renderMarkdown(w, d)
	case FormatHTML:
		return renderHTML(w, d)
	default:
		return fmt.Errorf("unsupported format %q", f)
	}
}

func encode(w io.Writer, f Format, v any) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json export: %w", err)
		}
		return nil
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml export: %w", err)
		}
		return enc.Close()
	}
}

func redactRisks(in []audit.RiskItem) []audit.RiskItem {
	out := make([]audit.RiskItem, 0, len(in))
	for _, r := range in {
		r.Description = redact.Text(r.Description)
		r.Recommendation = redact.Text(r.Recommendation)
		out = append(out, r)
	}
	return out
}

func titleOr(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Untitled project"
	}
	return name
}
