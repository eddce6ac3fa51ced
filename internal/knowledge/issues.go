package knowledge

import (
	"strings"

	"github.com/kdurante/playbookmcp/internal/docsource"
	"github.com/kdurante/playbookmcp/internal/fuzzy"
)

// IssueEntry is one symptom → diagnosis → resolution triple from a
// troubleshooting section.
type IssueEntry struct {
	Symptom    string
	Diagnosis  []string
	Resolution string
	Breadcrumb string
}

// IssueIndex holds troubleshooting entries in source order.
type IssueIndex struct {
	Entries []*IssueEntry
}

var resolutionLabels = []string{"resolution", "fix", "solution", "workaround"}
var symptomLabels = []string{"symptom", "problem", "issue"}

// buildIssues extracts entries from issue-tagged sections. Each
// subsection is one issue: its title is the symptom, list-style lines
// are diagnosis steps, and a labeled "Resolution:" block (or the final
// paragraph) is the resolution.
func buildIssues(root *Section, warn warnFunc) *IssueIndex {
	x := &IssueIndex{}

	root.Walk(func(s *Section) {
		if s.Kind != KindIssue || hasAncestorKind(s, KindIssue) {
			return
		}
		s.Walk(func(sub *Section) {
			x.harvest(sub, warn)
		})
	})

	return x
}

func (x *IssueIndex) harvest(s *Section, warn warnFunc) {
	crumb := s.Breadcrumb()

	if !s.IsRoot() && hasAncestorKind(s, KindIssue) && len(s.Blocks) > 0 {
		if e := issueFromBlocks(s.Title, s.Blocks, crumb); e != nil {
			x.Entries = append(x.Entries, e)
		}
		return
	}

	// Inside the tagged section itself, labeled "Symptom: ..." blocks
	// open entries without a subsection heading.
	var current *IssueEntry
	flush := func() {
		if current != nil && current.Symptom != "" {
			x.Entries = append(x.Entries, current)
		}
		current = nil
	}
	for _, b := range s.Blocks {
		if b.IsTable() || b.Text == "" {
			continue
		}
		if label, rest, ok := splitLabel(b.Text); ok && matchesAny(label, symptomLabels) {
			flush()
			current = &IssueEntry{Symptom: rest, Breadcrumb: crumb}
			continue
		}
		if current == nil {
			continue
		}
		if label, rest, ok := splitLabel(b.Text); ok && matchesAny(label, resolutionLabels) {
			current.Resolution = rest
			continue
		}
		if step, ok := listItem(b.Text); ok {
			current.Diagnosis = append(current.Diagnosis, step)
			continue
		}
		if current.Resolution == "" {
			current.Resolution = b.Text
		} else {
			current.Resolution += "\n\n" + b.Text
		}
	}
	flush()
}

// issueFromBlocks builds an entry for a troubleshooting subsection.
func issueFromBlocks(symptom string, blocks []docsource.Block, crumb string) *IssueEntry {
	e := &IssueEntry{Symptom: symptom, Breadcrumb: crumb}
	var prose []string

	for _, b := range blocks {
		if b.IsTable() || b.Text == "" {
			continue
		}
		if label, rest, ok := splitLabel(b.Text); ok && matchesAny(label, resolutionLabels) {
			e.Resolution = rest
			continue
		}
		if step, ok := listItem(b.Text); ok {
			e.Diagnosis = append(e.Diagnosis, step)
			continue
		}
		prose = append(prose, b.Text)
	}

	// Without a labeled resolution, the final paragraph is the closest
	// thing to one; earlier prose reads as diagnosis context.
	if e.Resolution == "" && len(prose) > 0 {
		e.Resolution = prose[len(prose)-1]
		prose = prose[:len(prose)-1]
	}
	for _, p := range prose {
		e.Diagnosis = append(e.Diagnosis, p)
	}

	if e.Resolution == "" && len(e.Diagnosis) == 0 {
		return nil
	}
	return e
}

// Solve ranks issues against the symptom query. Scoring weighs the
// symptom title over body content, mirroring how the playbook names
// issues by their observable symptom.
func (x *IssueIndex) Solve(symptom string, matchFloor, suggestionFloor float64) ([]*IssueEntry, []Suggestion) {
	type scored struct {
		entry *IssueEntry
		score float64
	}
	ranked := make([]scored, 0, len(x.Entries))
	for _, e := range x.Entries {
		body := strings.Join(e.Diagnosis, " ") + " " + e.Resolution
		score := 0.7*fuzzy.Score(symptom, e.Symptom) + 0.3*fuzzy.PartialRatio(fuzzy.Normalize(symptom), fuzzy.Normalize(body))
		ranked = append(ranked, scored{e, score})
	}
	stableSortByScore(ranked, func(s scored) float64 { return s.score })

	var matches []*IssueEntry
	for _, r := range ranked {
		if r.score < matchFloor || len(matches) == 3 {
			break
		}
		matches = append(matches, r.entry)
	}
	if len(matches) > 0 {
		return matches, nil
	}

	var suggestions []Suggestion
	for _, r := range ranked {
		if r.score < suggestionFloor || len(suggestions) == 3 {
			break
		}
		suggestions = append(suggestions, Suggestion{
			Name:       r.entry.Symptom,
			Score:      r.score,
			Breadcrumb: r.entry.Breadcrumb,
		})
	}
	return nil, suggestions
}

// splitLabel splits a "Label: rest" block with a one-or-two word label.
func splitLabel(text string) (label, rest string, ok bool) {
	if strings.Contains(text, "\n") {
		return "", "", false
	}
	i := strings.Index(text, ":")
	if i <= 0 || i > 30 {
		return "", "", false
	}
	label = strings.ToLower(strings.TrimSpace(text[:i]))
	rest = strings.TrimSpace(text[i+1:])
	if rest == "" || len(strings.Fields(label)) > 2 {
		return "", "", false
	}
	return label, rest, true
}

// listItem strips a bullet or numbered-list marker, reporting whether
// the line was a list item.
func listItem(text string) (string, bool) {
	if strings.Contains(text, "\n") {
		return "", false
	}
	for _, marker := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(text, marker) {
			return strings.TrimSpace(text[len(marker):]), true
		}
	}
	trimmed := strings.TrimLeft(text, "0123456789")
	if trimmed != text && (strings.HasPrefix(trimmed, ". ") || strings.HasPrefix(trimmed, ") ")) {
		return strings.TrimSpace(trimmed[2:]), true
	}
	return "", false
}
