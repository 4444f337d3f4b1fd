package textmatch

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                "",
		"  Brócolis ":     "brocolis",
		"CAMARÃO":         "camarao",
		"Romeu e Julieta": "romeu e julieta",
		"Pastéis de Pão":  "pasteis de pao",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"Açúcar", "  Carne Seca", "Ñandú", "queijo", "ÉÈÊË"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}

func TestSimilarityTiers(t *testing.T) {
	t.Parallel()

	if got := Similarity("Camarão", "camarao"); got != ExactScore {
		t.Fatalf("exact match score = %v, want %v", got, ExactScore)
	}
	if got := Similarity("carne", "Carne Seca"); got != SubstringScore {
		t.Fatalf("substring score = %v, want %v", got, SubstringScore)
	}
	if got := Similarity("Carne Seca", "seca"); got != SubstringScore {
		t.Fatalf("reverse substring score = %v, want %v", got, SubstringScore)
	}
	got := Similarity("carme", "carne")
	if math.Abs(got-0.8) > 1e-9 {
		t.Fatalf("ratio score = %v, want 0.8", got)
	}
}

func TestRatioSymmetricAndBounded(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"abc", "cab"},
		{"frango", "franco"},
		{"palmito", "pizza"},
		{"queijo", "xyz"},
	}
	for _, p := range pairs {
		ab := Ratio(p[0], p[1])
		ba := Ratio(p[1], p[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Fatalf("Ratio(%q,%q)=%v but reverse=%v", p[0], p[1], ab, ba)
		}
		if ab < 0 || ab >= 1 {
			t.Fatalf("Ratio(%q,%q)=%v out of [0,1)", p[0], p[1], ab)
		}
	}
	if got := Ratio("queijo", "queijo"); got != 1 {
		t.Fatalf("Ratio of identical strings = %v, want 1", got)
	}
}

func TestRatioMatchesSequenceMatcher(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b string
		want float64
	}{
		{"frango", "franco", 10.0 / 12},
		{"camarão", "camarao", 12.0 / 14},
		{"abc", "cab", 4.0 / 6},
		{"palmito", "pizza", 4.0 / 12},
	}
	for _, tc := range cases {
		if got := Ratio(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Ratio(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestScoreEmpty(t *testing.T) {
	t.Parallel()

	if got := Score("", "carne"); got != 0 {
		t.Fatalf("Score with empty input = %v, want 0", got)
	}
	if got := Score("", ""); got != ExactScore {
		t.Fatalf("Score of two empty strings = %v, want %v", got, ExactScore)
	}
}
