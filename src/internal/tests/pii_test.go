package services_test

import (
	"testing"

	"github.com/api-sage/payout-reconciler/src/internal/domain"
)

func TestMaskResidentNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"8801011234568", "880101-1******"},
		{"880101-1234568", "880101-1******"},
		// Not a full resident number: returned unchanged.
		{"12345", "12345"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := domain.MaskResidentNumber(tc.in); got != tc.want {
			t.Fatalf("MaskResidentNumber(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidateResidentNumber(t *testing.T) {
	if !domain.ValidateResidentNumber("8801011234568") {
		t.Fatal("expected valid resident number to pass")
	}
	if !domain.ValidateResidentNumber("880101-1234568") {
		t.Fatal("expected hyphenated resident number to pass")
	}
	if domain.ValidateResidentNumber("8801011234569") {
		t.Fatal("expected wrong check digit to fail")
	}
	if domain.ValidateResidentNumber("8813011234568") {
		t.Fatal("expected impossible month to fail")
	}
	if domain.ValidateResidentNumber("880101123456") {
		t.Fatal("expected short value to fail")
	}
}

func TestDigitsOnlyAccountNumber(t *testing.T) {
	if got := domain.DigitsOnlyAccountNumber("1002-941-050782"); got != "1002941050782" {
		t.Fatalf("expected digits only, got %q", got)
	}
	if got := domain.DigitsOnlyAccountNumber("abc"); got != "" {
		t.Fatalf("expected empty for non-digits, got %q", got)
	}
}
