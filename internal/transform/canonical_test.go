package transform

import (
	"regexp"
	"testing"
)

func TestCanonicalValue(t *testing.T) {
	cases := []struct {
		literal string
		want    string
	}{
		{"The HR Manager", "HR_MANAGER"},
		{"HR Manager", "HR_MANAGER"},
		{"Co-Founder", "CO_FOUNDER"},
		{"A Director", "DIRECTOR"},
		{"an Officer", "OFFICER"},
		{"The", "THE"},
		{"St. John's", "ST_JOHNS"},
		{"Vice   President", "VICE_PRESIDENT"},
		{"30 days", "30_DAYS"},
		{"  spaced  out  ", "SPACED_OUT"},
		{"!!!", ""},
	}
	for _, tc := range cases {
		if got := CanonicalValue(tc.literal); got != tc.want {
			t.Fatalf("CanonicalValue(%q) = %q, want %q", tc.literal, got, tc.want)
		}
	}
}

var canonicalValueRe = regexp.MustCompile(`^[A-Z0-9_]+$`)

func TestCanonicalValuesMatchPattern(t *testing.T) {
	literals := []string{
		"The HR Manager",
		"Chief Executive Officer",
		"Co-Founder",
		"10% of net revenue",
		"Notice Period (days)",
	}
	for _, lit := range literals {
		v := CanonicalValue(lit)
		if v == "" {
			t.Fatalf("CanonicalValue(%q) stripped to empty", lit)
		}
		if !canonicalValueRe.MatchString(v) {
			t.Fatalf("CanonicalValue(%q) = %q does not match ^[A-Z0-9_]+$", lit, v)
		}
	}
}

func TestCanonicalOptionsKeepFirstSeenOrder(t *testing.T) {
	segs := SegmentFragment("Gamma OR Alpha OR [KEY] OR Beta")
	opts := canonicalOptions(segs)
	wantValues := []string{"GAMMA", "ALPHA", "KEY", "BETA"}
	if len(opts) != len(wantValues) {
		t.Fatalf("got %d options, want %d", len(opts), len(wantValues))
	}
	for i, want := range wantValues {
		if opts[i].Value != want {
			t.Fatalf("option %d = %q, want %q", i, opts[i].Value, want)
		}
	}
	if opts[2].PlaceholderKey != "KEY" || opts[2].Label != "KEY" {
		t.Fatalf("nested option = %+v, want key and label KEY", opts[2])
	}
}
