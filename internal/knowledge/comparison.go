package knowledge

import (
	"strings"

	"github.com/kdurante/playbookmcp/internal/docsource"
	"github.com/kdurante/playbookmcp/internal/fuzzy"
)

// PlatformVerdict is one platform's recommendation for a comparison
// dimension.
type PlatformVerdict struct {
	Platform string
	Verdict  string
}

// ComparisonEntry answers "when to use X vs Y" for one dimension.
type ComparisonEntry struct {
	Dimension  string
	Verdicts   []PlatformVerdict
	Rationale  string
	Breadcrumb string
}

// ComparisonIndex holds comparison entries in source order.
type ComparisonIndex struct {
	Entries []*ComparisonEntry
}

// buildComparisons extracts entries from comparison-tagged sections:
// table rows (first column is the dimension, header row names the
// platforms) and "X vs Y" subsections with "Platform: verdict" lines.
func buildComparisons(root *Section, warn warnFunc) *ComparisonIndex {
	x := &ComparisonIndex{}

	root.Walk(func(s *Section) {
		if s.Kind != KindComparison || hasAncestorKind(s, KindComparison) {
			return
		}
		s.Walk(func(sub *Section) {
			x.harvest(sub, warn)
		})
	})

	return x
}

func (x *ComparisonIndex) harvest(s *Section, warn warnFunc) {
	crumb := s.Breadcrumb()

	for _, b := range s.Blocks {
		if b.IsTable() {
			x.harvestTable(b.Table, crumb, warn)
		}
	}

	// A subsection under a comparison section is itself a dimension:
	// "Platform: verdict" lines become verdicts, the rest rationale.
	if !s.IsRoot() && hasAncestorKind(s, KindComparison) && len(s.Blocks) > 0 {
		if entry := proseEntry(s.Title, s.Blocks, crumb); entry != nil {
			x.Entries = append(x.Entries, entry)
		}
	}
}

func (x *ComparisonIndex) harvestTable(rows [][]string, crumb string, warn warnFunc) {
	if len(rows) < 2 || len(rows[0]) < 2 {
		warn("comparison table in %q too small, skipped", crumb)
		return
	}

	header := rows[0]
	rationaleCol := -1
	for i := 1; i < len(header); i++ {
		if containsFold(header[i], "rationale", "why", "note", "recommendation") {
			rationaleCol = i
		}
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 2 {
			warn("comparison table row %d in %q has %d cells, skipped", i, crumb, len(row))
			continue
		}
		entry := &ComparisonEntry{
			Dimension:  strings.TrimSpace(row[0]),
			Breadcrumb: crumb,
		}
		if entry.Dimension == "" {
			warn("comparison table row %d in %q has no dimension, skipped", i, crumb)
			continue
		}
		for c := 1; c < len(row) && c < len(header); c++ {
			v := strings.TrimSpace(row[c])
			if v == "" {
				continue
			}
			if c == rationaleCol {
				entry.Rationale = v
				continue
			}
			entry.Verdicts = append(entry.Verdicts, PlatformVerdict{
				Platform: strings.TrimSpace(header[c]),
				Verdict:  v,
			})
		}
		x.Entries = append(x.Entries, entry)
	}
}

func proseEntry(title string, blocks []docsource.Block, crumb string) *ComparisonEntry {
	entry := &ComparisonEntry{Dimension: title, Breadcrumb: crumb}
	var rationale []string

	for _, b := range blocks {
		if b.IsTable() || b.Text == "" {
			continue
		}
		if platform, verdict, ok := splitVerdictLine(b.Text); ok {
			entry.Verdicts = append(entry.Verdicts, PlatformVerdict{Platform: platform, Verdict: verdict})
		} else {
			rationale = append(rationale, b.Text)
		}
	}

	entry.Rationale = strings.Join(rationale, "\n\n")
	if len(entry.Verdicts) == 0 && entry.Rationale == "" {
		return nil
	}
	return entry
}

// splitVerdictLine matches "GA4: use for behavioral funnels" style
// lines: a short platform label, a colon, and the verdict.
func splitVerdictLine(text string) (platform, verdict string, ok bool) {
	if strings.Contains(text, "\n") {
		return "", "", false
	}
	i := strings.Index(text, ":")
	if i <= 0 || i > 30 {
		return "", "", false
	}
	platform = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(text[:i], "-"), "*"))
	verdict = strings.TrimSpace(text[i+1:])
	if platform == "" || verdict == "" || len(strings.Fields(platform)) > 3 {
		return "", "", false
	}
	return platform, verdict, true
}

// Compare resolves a dimension query. Near-equal scores tie-break on
// the longest common token prefix with the query before raw score.
func (x *ComparisonIndex) Compare(dimension string, platforms []string, matchFloor, suggestionFloor float64) (*ComparisonEntry, []Suggestion) {
	type scored struct {
		entry *ComparisonEntry
		score float64
	}
	ranked := make([]scored, 0, len(x.Entries))
	for _, e := range x.Entries {
		ranked = append(ranked, scored{e, fuzzy.Score(dimension, e.Dimension)})
	}
	stableSortByScore(ranked, func(s scored) float64 { return s.score })

	if len(ranked) == 0 || ranked[0].score < matchFloor {
		var suggestions []Suggestion
		for _, r := range ranked {
			if r.score < suggestionFloor || len(suggestions) == 3 {
				break
			}
			suggestions = append(suggestions, Suggestion{
				Name:       r.entry.Dimension,
				Score:      r.score,
				Breadcrumb: r.entry.Breadcrumb,
			})
		}
		return nil, suggestions
	}

	best := ranked[0]
	bestPrefix := fuzzy.CommonTokenPrefix(dimension, best.entry.Dimension)
	for _, r := range ranked[1:] {
		if best.score-r.score >= ambiguityDelta {
			break
		}
		if p := fuzzy.CommonTokenPrefix(dimension, r.entry.Dimension); p > bestPrefix {
			best, bestPrefix = r, p
		}
	}

	entry := best.entry
	if len(platforms) > 0 {
		entry = filterVerdicts(entry, platforms)
	}
	return entry, nil
}

// filterVerdicts reorders and filters an entry's verdicts to the
// requested platforms, leaving the indexed entry untouched.
func filterVerdicts(e *ComparisonEntry, platforms []string) *ComparisonEntry {
	out := &ComparisonEntry{
		Dimension:  e.Dimension,
		Rationale:  e.Rationale,
		Breadcrumb: e.Breadcrumb,
	}
	for _, want := range platforms {
		for _, v := range e.Verdicts {
			if strings.EqualFold(v.Platform, want) ||
				containsFold(v.Platform, strings.ToLower(want)) {
				out.Verdicts = append(out.Verdicts, v)
			}
		}
	}
	return out
}
