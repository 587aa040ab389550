// Package redact masks credentials that users paste into project descriptions
// or that a backend echoes in an error body, before the text reaches a log
// file or an exported report.
package redact

import "regexp"

var (
	privateKeyPattern = regexp.MustCompile(`-----BEGIN [A-Z0-9 ]*PRIVATE KEY-----[\s\S]*?-----END [A-Z0-9 ]*PRIVATE KEY-----`)
	bearerPattern     = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._~+/=-]{8,}`)
	tokenAssign       = regexp.MustCompile(`(?i)\b(api[_-]?key|secret|token|password|passwd|pwd)\b(\s*[:=]\s*)(["']?)([A-Za-z0-9._~+/=-]{8,})(["']?)`)
	awsAccessKey      = regexp.MustCompile(`\b(A3T|AKIA|ASIA|AGPA|AIDA|ANPA|ANVA|AROA|AIPA)[0-9A-Z]{16}\b`)
	githubToken       = regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{20,}\b`)
	googleAPIKey      = regexp.MustCompile(`\bAIza[0-9A-Za-z_-]{35}\b`)
	urlCredentials    = regexp.MustCompile(`\b([a-zA-Z][a-zA-Z0-9+.-]*://[^:/@\s]+:)([^@\s]+)(@)`)
)

const Mask = "[REDACTED]"

// Text masks common secret patterns. Text without secrets is returned unchanged.
func Text(in string) string {
	out := in
	out = privateKeyPattern.ReplaceAllString(out, "[REDACTED PRIVATE KEY]")
	out = bearerPattern.ReplaceAllString(out, "Bearer "+Mask)
	out = tokenAssign.ReplaceAllString(out, `${1}${2}${3}`+Mask+`${5}`)
	out = awsAccessKey.ReplaceAllString(out, "[REDACTED_AWS_ACCESS_KEY]")
	out = githubToken.ReplaceAllString(out, "[REDACTED_GITHUB_TOKEN]")
	out = googleAPIKey.ReplaceAllString(out, "[REDACTED_GOOGLE_API_KEY]")
	out = urlCredentials.ReplaceAllString(out, "${1}"+Mask+"${3}")
	return out
}
