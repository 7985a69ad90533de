// Package clientinfo classifies caller User-Agent strings for request logs.
package clientinfo

import (
	"strings"

	"github.com/mssola/useragent"
)

// Describe returns a compact, low-cardinality description of the calling
// client, suitable for structured logs. Raw User-Agent strings are never
// logged verbatim to keep log lines bounded and free of injected content.
func Describe(userAgentString string) string {
	if strings.TrimSpace(userAgentString) == "" {
		return "unknown"
	}

	ua := useragent.New(userAgentString)
	if ua.Bot() {
		return "bot"
	}

	browser, version := ua.Browser()
	if browser == "" {
		// Service-to-service callers typically send "name/version" agents
		// that the browser parser does not recognize.
		if name, _, ok := strings.Cut(userAgentString, "/"); ok && name != "" {
			return "service:" + name
		}
		return "service"
	}

	major := "unknown"
	if version != "" {
		if m, _, _ := strings.Cut(version, "."); m != "" {
			major = m
		}
	}

	platform := "desktop"
	if ua.Mobile() {
		platform = "mobile"
	}

	return browser + "/" + major + " (" + ua.OS() + ", " + platform + ")"
}
