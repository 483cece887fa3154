package main

import (
	"strings"
	"testing"
)

func TestBuildAddress(t *testing.T) {
	tests := []struct {
		port     string
		expected string
	}{
		{"3001", "http://127.0.0.1:3001/health"},
		{"8080", "http://127.0.0.1:8080/health"},
	}
	for _, tt := range tests {
		if got := buildAddress(tt.port); got != tt.expected {
			t.Errorf("buildAddress(%q) = %q, want %q", tt.port, got, tt.expected)
		}
	}
}

func TestBuildAddressUsesIPv4(t *testing.T) {
	address := buildAddress("3001")
	if strings.Contains(address, "localhost") {
		t.Error("buildAddress must not rely on name resolution")
	}
}
