package main

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestResolveStrategy(t *testing.T) {
	log := logrus.StandardLogger()

	tests := []struct {
		name string
		want strategy
	}{
		{"ls", strategyLinear},
		{"linearsweep", strategyLinear},
		{"rd", strategyRecursive},
		{"recursivedescent", strategyRecursive},
		{"bogus", strategyLinear},
		{"", strategyLinear},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolveStrategy(tc.name, log); got != tc.want {
				t.Fatalf("resolveStrategy(%q) = %v, want %v", tc.name, got, tc.want)
			}
		})
	}
}

func TestParseHexAddr(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"0x1000", 0x1000, false},
		{"1000", 0x1000, false},
		{"0xFF", 0xFF, false},
		{"not-hex", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseHexAddr(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("parseHexAddr(%q): want error, got %#x", tc.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseHexAddr(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("parseHexAddr(%q) = %#x, want %#x", tc.in, got, tc.want)
			}
		})
	}
}
