package fingerprint

import (
	"testing"

	"github.com/lysyi3m/deal-comb/app/fetch"
)

func TestRunStableAcrossFormatting(t *testing.T) {
	a := Run(fetch.Candidate{
		Title: "50% off VPN!!! Annual plan",
		URL:   "https://deals.example.com/vpn-offer",
	})
	b := Run(fetch.Candidate{
		Title: "  50% OFF,  vpn annual plan  ",
		URL:   "https://deals.example.com/vpn-offer?utm_source=feed",
	})

	if a.Fingerprint != b.Fingerprint {
		t.Errorf("Expected identical fingerprints, got %s vs %s", a.Fingerprint, b.Fingerprint)
	}
	if a.Signature != "50 off vpn annual plan" {
		t.Errorf("Unexpected signature: %q", a.Signature)
	}
}

func TestRunDifferentDomains(t *testing.T) {
	a := Run(fetch.Candidate{Title: "50% off VPN", URL: "https://a.example.com/deal"})
	b := Run(fetch.Candidate{Title: "50% off VPN", URL: "https://b.example.com/deal"})

	if a.Fingerprint == b.Fingerprint {
		t.Error("Expected distinct fingerprints for distinct domains")
	}
}

func TestRunEmptyTitleFallsBackToURL(t *testing.T) {
	a := Run(fetch.Candidate{Title: "!!!", URL: "https://example.com/one"})
	b := Run(fetch.Candidate{Title: "!!!", URL: "https://example.com/two"})

	if a.Signature != "" {
		t.Errorf("Expected empty signature, got %q", a.Signature)
	}
	if a.Fingerprint == b.Fingerprint {
		t.Error("Expected URL to distinguish items with empty signatures")
	}
}

func TestRunHotScore(t *testing.T) {
	item := Run(fetch.Candidate{
		Title: "Big sale: 30% off laptops",
		Body:  "Use code SAVE for up to 80% off accessories",
		URL:   "https://example.com/sale",
	})

	if item.HotScore != 80 {
		t.Errorf("Expected hot score 80, got %v", item.HotScore)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello, World!", "hello world"},
		{"  multiple   spaces  ", "multiple spaces"},
		{"MiXeD-CaSe_2024", "mixed case 2024"},
		{"...", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.expected {
			t.Errorf("Normalize(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestHotScore(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"50% off everything", 50},
		{"up to 20% or 70% off", 70},
		{"", 0},
		{"no discount here", 0},
		{"999% nonsense", 0},
		{"100% free", 100},
	}

	for _, tt := range tests {
		if got := HotScore(tt.input); got != tt.expected {
			t.Errorf("HotScore(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}
