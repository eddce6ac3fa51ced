package knowledge

import (
	"strings"

	"github.com/kdurante/playbookmcp/internal/fuzzy"
)

// SectionRef is one flattened entry of the section tree, carrying the
// breadcrumb path used to cite answers back to their source location.
type SectionRef struct {
	Breadcrumb string
	Title      string
	Level      int
	Section    *Section
}

// Flatten walks the tree depth-first and returns refs for every
// section except the synthetic root, in source order.
func Flatten(root *Section) []SectionRef {
	var refs []SectionRef
	root.Walk(func(s *Section) {
		if s.IsRoot() {
			return
		}
		refs = append(refs, SectionRef{
			Breadcrumb: s.Breadcrumb(),
			Title:      s.Title,
			Level:      s.Level,
			Section:    s,
		})
	})
	return refs
}

// Outline renders the flattened sections as an indented table of
// contents, titles only.
func Outline(refs []SectionRef) string {
	var b strings.Builder
	for _, ref := range refs {
		depth := strings.Count(ref.Breadcrumb, " > ")
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString("- ")
		b.WriteString(ref.Title)
		b.WriteByte('\n')
	}
	return b.String()
}

// findSection resolves a query to a section: case-insensitive exact
// title match first, then substring, then fuzzy over all titles.
func findSection(refs []SectionRef, query string, matchFloor, suggestionFloor float64) (*SectionRef, []Suggestion) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}

	for i := range refs {
		if strings.ToLower(refs[i].Title) == q {
			return &refs[i], nil
		}
	}
	for i := range refs {
		if strings.Contains(strings.ToLower(refs[i].Title), q) {
			return &refs[i], nil
		}
	}

	candidates := make([]fuzzy.Candidate, len(refs))
	for i, ref := range refs {
		candidates[i] = fuzzy.Candidate{Key: ref.Breadcrumb, Text: ref.Title}
	}
	matches := fuzzy.Rank(query, candidates)
	if len(matches) == 0 {
		return nil, nil
	}

	byCrumb := make(map[string]*SectionRef, len(refs))
	for i := range refs {
		byCrumb[refs[i].Breadcrumb] = &refs[i]
	}

	if matches[0].Score >= matchFloor && !ambiguous(matches) {
		return byCrumb[matches[0].Key], nil
	}

	var suggestions []Suggestion
	for _, m := range matches {
		if m.Score < suggestionFloor || len(suggestions) == 3 {
			break
		}
		ref := byCrumb[m.Key]
		suggestions = append(suggestions, Suggestion{
			Name:       ref.Title,
			Score:      m.Score,
			Breadcrumb: ref.Breadcrumb,
		})
	}
	return nil, suggestions
}

// ambiguous reports whether the two best scores are within the
// ambiguity delta of each other while pointing at different keys.
func ambiguous(matches []fuzzy.Match) bool {
	return len(matches) > 1 &&
		matches[0].Key != matches[1].Key &&
		matches[0].Score-matches[1].Score < ambiguityDelta
}

// ambiguityDelta is the score spread below which the top two matches
// are surfaced as suggestions instead of silently picking one.
const ambiguityDelta = 5
