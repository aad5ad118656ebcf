package gradescale

import "testing"

func TestNormalizeKeepsCommonScaleValues(t *testing.T) {
	cases := map[string]float64{
		"0":    0,
		"7":    7,
		"15.5": 15.5,
		"20":   20,
	}
	for raw, want := range cases {
		got, ok := Normalize(raw)
		if !ok || got != want {
			t.Fatalf("Normalize(%q) = %v, %v; want %v", raw, got, ok, want)
		}
	}
}

func TestNormalizeDividesLargeScaleByTen(t *testing.T) {
	cases := map[string]float64{
		"20.5": 2.05,
		"155":  15.5,
		"200":  20,
	}
	for raw, want := range cases {
		got, ok := Normalize(raw)
		if !ok || got != want {
			t.Fatalf("Normalize(%q) = %v, %v; want %v", raw, got, ok, want)
		}
	}
}

func TestNormalizeRejectsInvalidInput(t *testing.T) {
	for _, raw := range []string{"", "  ", "abc", "-1", "-0.01", "200.01", "1000"} {
		if got, ok := Normalize(raw); ok {
			t.Fatalf("Normalize(%q) = %v, expected rejection", raw, got)
		}
	}
}

func TestNormalizeAcceptsCommaDecimalSeparator(t *testing.T) {
	got, ok := Normalize("12,75")
	if !ok || got != 12.75 {
		t.Fatalf("Normalize(12,75) = %v, %v", got, ok)
	}
}
