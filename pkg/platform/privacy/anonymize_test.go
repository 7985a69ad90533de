package privacy

import (
	"testing"
)

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		// IPv4 cases
		{name: "ipv4 standard address", input: "203.0.113.47", expected: "203.0.113.0"},
		{name: "ipv4 with last octet zero", input: "10.0.0.0", expected: "10.0.0.0"},
		{name: "ipv4 with high last octet", input: "172.16.50.255", expected: "172.16.50.0"},
		{name: "ipv4 localhost", input: "127.0.0.1", expected: "127.0.0.0"},

		// IPv6 cases
		{name: "ipv6 full address", input: "2001:db8:85a3:0000:0000:8a2e:0370:7334", expected: "2001:0db8:85a3::"},
		{name: "ipv6 compressed address", input: "2001:db8:85a3::8a2e:370:7334", expected: "2001:0db8:85a3::"},
		{name: "ipv6 loopback", input: "::1", expected: "0000:0000:0000::"},
		{name: "ipv6 link-local", input: "fe80::1", expected: "fe80:0000:0000::"},

		// Edge cases
		{name: "empty string", input: "", expected: "unknown"},
		{name: "unknown value", input: "unknown", expected: "unknown"},
		{name: "invalid ip", input: "not-an-ip", expected: "invalid"},
		{name: "partial ip", input: "192.168.1", expected: "invalid"},
		{name: "ip with port (invalid)", input: "192.168.1.1:8080", expected: "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AnonymizeIP(tt.input); got != tt.expected {
				t.Errorf("AnonymizeIP(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestAnonymizeIP_SameNetworkProducesSameOutput(t *testing.T) {
	// All IPs in the same /24 should produce the same anonymized output
	for _, ip := range []string{"198.51.100.1", "198.51.100.100", "198.51.100.255"} {
		if got := AnonymizeIP(ip); got != "198.51.100.0" {
			t.Errorf("AnonymizeIP(%q) = %q, want 198.51.100.0", ip, got)
		}
	}
}

func TestAnonymizeIP_DifferentNetworksProduceDifferentOutput(t *testing.T) {
	if AnonymizeIP("198.51.100.47") == AnonymizeIP("203.0.113.47") {
		t.Errorf("IPs in different networks should produce different outputs")
	}
}
