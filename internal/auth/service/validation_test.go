package service_test

import (
	"testing"

	"github.com/AlibekovAA/inference-auth/internal/auth/service"
)

func TestNormalizeEmail(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{"a@x.com", "a@x.com"},
		{"  A@X.COM\t", "a@x.com"},
		{"Mixed.Case@Example.org", "mixed.case@example.org"},
		{"", ""},
	}

	for _, tc := range testCases {
		if got := service.NormalizeEmail(tc.input); got != tc.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
