// Package ssrf gates outbound URLs against server-side request forgery.
// Every outbound call must pass Validate immediately before dispatch, not only
// at registration time, so late DNS or configuration changes cannot smuggle a
// request to an internal target.
package ssrf

import (
	"net/netip"
	"net/url"
	"strings"

	dErrors "conduit/pkg/domain-errors"
)

// blockedHostSuffixes are hostname suffixes that always resolve to internal
// infrastructure regardless of DNS.
var blockedHostSuffixes = []string{".local", ".internal", ".localhost"}

// blockedHosts are exact hostnames that must never be dialed.
var blockedHosts = map[string]struct{}{
	"localhost":                {},
	"metadata.google.internal": {},
}

// Validate rejects URLs that are empty, non-HTTP(S), or point at loopback,
// link-local, private, or otherwise internal network targets.
func Validate(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return dErrors.New(dErrors.CodeEmptyURL, "url cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidURL, "url is not parseable")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return dErrors.New(dErrors.CodeInvalidURL, "url scheme must be http or https")
	}

	// Resolvers treat a trailing-dot FQDN ("localhost.") the same as the bare
	// name, so it must be stripped before the name-based checks.
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return dErrors.New(dErrors.CodeInvalidURL, "url has no host")
	}

	if _, blocked := blockedHosts[host]; blocked {
		return blockedHost(host)
	}
	for _, suffix := range blockedHostSuffixes {
		if strings.HasSuffix(host, suffix) {
			return blockedHost(host)
		}
	}

	// Literal IP hosts are checked against private and special-use ranges.
	// url.Hostname strips IPv6 brackets and zone identifiers stay attached,
	// so trim any zone before parsing.
	ipText := host
	if i := strings.IndexByte(ipText, '%'); i >= 0 {
		ipText = ipText[:i]
	}
	addr, err := netip.ParseAddr(ipText)
	if err != nil {
		// Hostname, not an IP literal. Allowed; the suffix checks above are
		// the only name-based defense available without resolving DNS here.
		return nil
	}
	addr = addr.Unmap()

	if addr.IsLoopback() || addr.IsUnspecified() {
		return blockedHost(host)
	}
	if addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() {
		return blockedHost(host)
	}
	// Covers RFC1918 for IPv4 (10/8, 172.16/12, 192.168/16) and unique-local
	// fc00::/7 for IPv6 with exact range boundaries.
	if addr.IsPrivate() {
		return blockedHost(host)
	}

	return nil
}

func blockedHost(host string) error {
	return dErrors.New(dErrors.CodeURLNotAllowed, "host "+host+" is not allowed")
}
