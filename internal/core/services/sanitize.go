package services

import (
	"log/slog"
	"net/url"
	"strings"
)

// SanitizeBaseURL normalises a configured API base.
// Schemeless values get https://. The result is the lower-cased origin
// (default port dropped) followed by the path without trailing slashes;
// query and fragment are discarded. ok is false for blank or unparsable input.
func SanitizeBaseURL(candidate string) (string, bool) {
	return sanitizeBaseURL(slog.Default(), candidate)
}

func sanitizeBaseURL(logger *slog.Logger, candidate string) (string, bool) {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return "", false
	}

	withScheme := trimmed
	if !hasHTTPScheme(trimmed) {
		withScheme = "https://" + trimmed
	}

	u, err := url.Parse(withScheme)
	if err != nil || u.Hostname() == "" {
		logger.Warn("invalid API base URL, ignoring", "url", candidate, "error", err)
		return "", false
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	port := u.Port()
	switch {
	case port == "":
		host = strings.TrimSuffix(host, ":")
	case scheme == "https" && port == "443", scheme == "http" && port == "80":
		host = strings.TrimSuffix(host, ":"+port)
	}

	path := strings.TrimRight(u.EscapedPath(), "/")
	return scheme + "://" + host + path, true
}

func hasHTTPScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// isLocalBase reports whether a sanitized base points at the local machine
func isLocalBase(base string) bool {
	u, err := url.Parse(base)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Hostname()) {
	case "localhost", "127.0.0.1", "0.0.0.0":
		return true
	default:
		return false
	}
}
