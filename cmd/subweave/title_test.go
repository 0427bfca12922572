package main

import "testing"

func TestDeriveTitle(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/videos/harbor_tour.mkv", "Harbor Tour"},
		{"/videos/the.big.lebowski.1998.mkv", "The Big Lebowski 1998"},
		{"/videos/Already Titled.mp4", "Already Titled"},
		{"/videos/mixed-separators__and  spaces.mkv", "Mixed Separators And Spaces"},
		{"/videos/---.mkv", "Unknown Video"},
		{"", "Unknown Video"},
	}
	for _, tc := range cases {
		if got := deriveTitle(tc.path); got != tc.want {
			t.Fatalf("deriveTitle(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestMaskSecret(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "(unset)"},
		{"short", "********"},
		{"12345678", "********"},
		{"sk-or-v1-abcdef123456", "sk-o...3456"},
	}
	for _, tc := range cases {
		if got := maskSecret(tc.in); got != tc.want {
			t.Fatalf("maskSecret(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
