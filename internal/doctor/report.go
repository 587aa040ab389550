package doctor

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"

	"auditor/internal/client"
	"auditor/internal/config"
	"auditor/internal/safefile"
)

// DefaultPingTimeout bounds the reachability check when the config sets no request timeout.
const DefaultPingTimeout = 5 * time.Second

// Pinger checks that the audit backend answers.
type Pinger interface {
	Ping(ctx context.Context) (string, error)
}

type Options struct {
	// Paths overrides the config file locations. Zero uses config.DefaultPaths.
	Paths config.Paths
	// APIURL, when set, wins over the configured backend URL.
	APIURL string
	// Pinger overrides the client built from the resolved config.
	Pinger Pinger
}

func BuildReport(ctx context.Context, opts Options) Report {
	report := Report{Checks: make([]CheckResult, 0, 5)}
	add := func(res CheckResult) {
		report.Checks = append(report.Checks, res)
		switch res.Status {
		case StatusFail:
			report.Summary.Fail++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %s", res.ID, res.Message))
		case StatusWarn:
			report.Summary.Warning++
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %s", res.ID, res.Message))
		default:
			report.Summary.Pass++
		}
	}

	paths := opts.Paths
	if paths == (config.Paths{}) {
		paths = config.DefaultPaths()
	}
	cfg, cfgErr := config.LoadPaths(paths)
	if cfgErr != nil {
		add(CheckResult{
			ID:      "config.load",
			Status:  StatusFail,
			Message: fmt.Sprintf("failed to load config: %v", cfgErr),
		})
		cfg = config.Config{APIURL: config.DefaultAPIURL, Locale: "tr-TR", Log: config.LogConfig{File: config.DefaultLogFile()}}
	} else {
		add(CheckResult{
			ID:      "config.load",
			Status:  StatusPass,
			Message: "configuration loaded",
			Metadata: map[string]string{
				"global_config": fileState(paths.Global),
				"local_config":  fileState(paths.Local),
			},
		})
	}
	if strings.TrimSpace(opts.APIURL) != "" {
		cfg.APIURL = config.NormalizeAPIURL(opts.APIURL)
	}

	urlCheck := apiURLCheck(cfg.APIURL)
	add(urlCheck)
	if urlCheck.Status == StatusFail {
		add(CheckResult{ID: "api.reachable", Status: StatusFail, Message: "skipped: backend URL is invalid"})
	} else {
		pinger := opts.Pinger
		if pinger == nil {
			pinger = client.New(client.Options{BaseURL: cfg.APIURL})
		}
		timeout := cfg.RequestTimeout
		if timeout <= 0 {
			timeout = DefaultPingTimeout
		}
		add(reachableCheck(ctx, pinger, cfg.APIURL, timeout))
	}

	add(localeCheck(cfg.Locale))
	add(logDirWritableCheck(cfg.Log.File))

	return report
}

func apiURLCheck(raw string) CheckResult {
	u, err := url.Parse(raw)
	if err != nil {
		return CheckResult{ID: "api.url", Status: StatusFail, Message: fmt.Sprintf("invalid backend URL: %v", err)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return CheckResult{ID: "api.url", Status: StatusFail, Message: fmt.Sprintf("backend URL scheme must be http or https, got %q", u.Scheme)}
	}
	if u.Host == "" {
		return CheckResult{ID: "api.url", Status: StatusFail, Message: "backend URL has no host"}
	}
	return CheckResult{ID: "api.url", Status: StatusPass, Message: "backend URL is valid", Metadata: map[string]string{"url": raw}}
}

func reachableCheck(ctx context.Context, p Pinger, base string, timeout time.Duration) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	msg, err := p.Ping(ctx)
	if err != nil {
		return CheckResult{
			ID:       "api.reachable",
			Status:   StatusFail,
			Message:  fmt.Sprintf("audit backend unreachable: %v", err),
			Metadata: map[string]string{"url": base},
		}
	}
	meta := map[string]string{
		"url":     base,
		"latency": time.Since(start).Round(time.Millisecond).String(),
	}
	if msg != "" {
		meta["message"] = msg
	}
	return CheckResult{ID: "api.reachable", Status: StatusPass, Message: "audit backend responded", Metadata: meta}
}

func localeCheck(locale string) CheckResult {
	tag, err := language.Parse(locale)
	if err != nil {
		return CheckResult{
			ID:      "locale",
			Status:  StatusWarn,
			Message: fmt.Sprintf("locale %q is not a valid language tag; dates fall back to tr-TR", locale),
		}
	}
	return CheckResult{ID: "locale", Status: StatusPass, Message: "locale is valid", Metadata: map[string]string{"tag": tag.String()}}
}

func logDirWritableCheck(logFile string) CheckResult {
	if strings.TrimSpace(logFile) == "" {
		return CheckResult{ID: "log.writable", Status: StatusWarn, Message: "file logging is disabled"}
	}
	dir, err := safefile.EnsureDir(filepath.Dir(logFile), 0o700)
	if err != nil {
		return CheckResult{ID: "log.writable", Status: StatusFail, Message: fmt.Sprintf("create log dir: %v", err)}
	}
	f, err := os.CreateTemp(dir, ".doctor-write-*")
	if err != nil {
		return CheckResult{ID: "log.writable", Status: StatusFail, Message: fmt.Sprintf("write test in log dir failed: %v", err)}
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return CheckResult{ID: "log.writable", Status: StatusPass, Message: "log directory is writable", Metadata: map[string]string{"path": dir}}
}

func fileState(path string) string {
	if path == "" {
		return "missing"
	}
	if _, err := os.Stat(path); err == nil {
		return "present"
	}
	return "missing"
}
