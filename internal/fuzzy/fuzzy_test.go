package fuzzy

import "testing"

func TestNormalize(t *testing.T) {
	got := Normalize("  Cookie-Consent  (GA4)!  ")
	want := "cookie consent ga4"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNormalize_NonASCIILetters(t *testing.T) {
	got := Normalize("Durée de Rétention (RGPD)!")
	want := "durée de rétention rgpd"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if Normalize("保持期間") == "" {
		t.Error("non-Latin letters must survive normalization")
	}
}

func TestRatio_Identical(t *testing.T) {
	if s := Ratio("session", "session"); s != 100 {
		t.Errorf("expected 100, got %f", s)
	}
}

func TestRatio_Empty(t *testing.T) {
	if s := Ratio("", "session"); s != 0 {
		t.Errorf("expected 0, got %f", s)
	}
	if s := Ratio("", ""); s != 100 {
		t.Errorf("expected 100 for two empty strings, got %f", s)
	}
}

func TestRatio_Misspelling(t *testing.T) {
	s := Ratio("sesion", "session")
	if s < 80 || s >= 100 {
		t.Errorf("expected high but imperfect score for misspelling, got %f", s)
	}
}

func TestPartialRatio_Substring(t *testing.T) {
	if s := PartialRatio("session", "session duration"); s != 100 {
		t.Errorf("expected 100 for substring, got %f", s)
	}
}

func TestTokenSetRatio_Reordered(t *testing.T) {
	s := TokenSetRatio("consent cookie", "cookie consent")
	if s != 100 {
		t.Errorf("expected 100 for reordered tokens, got %f", s)
	}
}

func TestTokenSetRatio_Duplicates(t *testing.T) {
	s := TokenSetRatio("cookie cookie consent", "cookie consent")
	if s != 100 {
		t.Errorf("expected 100 ignoring duplicates, got %f", s)
	}
}

func TestScore_Bounds(t *testing.T) {
	pairs := [][2]string{
		{"", ""},
		{"a", "completely different phrase"},
		{"GA4 cookie limit", "Cookie Consent"},
		{"sesion", "Session"},
	}
	for _, p := range pairs {
		s := Score(p[0], p[1])
		if s < 0 || s > 100 {
			t.Errorf("Score(%q, %q) = %f out of [0,100]", p[0], p[1], s)
		}
	}
}

func TestRank_SortedAndStable(t *testing.T) {
	candidates := []Candidate{
		{Key: "a", Text: "Bounce Rate"},
		{Key: "b", Text: "Session"},
		{Key: "c", Text: "Session"},
		{Key: "d", Text: "Session Duration"},
	}
	matches := Rank("session", candidates)
	if len(matches) != 4 {
		t.Fatalf("expected 4 matches, got %d", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("matches not sorted: %v before %v", matches[i-1], matches[i])
		}
	}
	// b and c score identically; source order must hold.
	if matches[0].Key != "b" || matches[1].Key != "c" {
		t.Errorf("expected stable tie order b,c at top, got %s,%s", matches[0].Key, matches[1].Key)
	}
}

func TestCommonTokenPrefix(t *testing.T) {
	if n := CommonTokenPrefix("attribution window", "Attribution Window Length"); n != 2 {
		t.Errorf("expected 2, got %d", n)
	}
	if n := CommonTokenPrefix("event tracking", "attribution"); n != 0 {
		t.Errorf("expected 0, got %d", n)
	}
}
