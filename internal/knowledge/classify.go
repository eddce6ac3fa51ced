package knowledge

import "strings"

// SectionKind tags what kind of content a section holds, so each
// extractor only consumes sections tagged for it.
type SectionKind int

const (
	KindGeneral SectionKind = iota
	KindGlossary
	KindCompliance
	KindComparison
	KindIssue
)

func (k SectionKind) String() string {
	switch k {
	case KindGlossary:
		return "glossary"
	case KindCompliance:
		return "compliance"
	case KindComparison:
		return "comparison"
	case KindIssue:
		return "issue"
	}
	return "general"
}

// Markers are the lowercase title substrings that classify a section.
type Markers struct {
	Glossary   []string
	Compliance []string
	Comparison []string
	Issue      []string
}

// DefaultMarkers match the section vocabulary of the analytics playbook.
func DefaultMarkers() Markers {
	return Markers{
		Glossary:   []string{"metric", "dimension", "glossary", "definition"},
		Compliance: []string{"limit", "compliance", "restriction", "consent", "retention", "quota"},
		Comparison: []string{" vs ", "versus", "comparison", "compare", "choose", "choosing", "when to use"},
		Issue:      []string{"troubleshoot", "issue", "problem", "discrepanc", "faq", "debug"},
	}
}

// Classify tags a section title. A title matching several marker sets
// gets exactly one kind, in priority order glossary > compliance >
// comparison > issue, keeping each extractor's input disjoint.
func Classify(title string, m Markers) SectionKind {
	t := strings.ToLower(title)
	switch {
	case matchesAny(t, m.Glossary):
		return KindGlossary
	case matchesAny(t, m.Compliance):
		return KindCompliance
	case matchesAny(t, m.Comparison):
		return KindComparison
	case matchesAny(t, m.Issue):
		return KindIssue
	}
	return KindGeneral
}

// ClassifyTree tags every section in the tree.
func ClassifyTree(root *Section, m Markers) {
	root.Walk(func(s *Section) {
		s.Kind = Classify(s.Title, m)
	})
}

func matchesAny(title string, markers []string) bool {
	for _, marker := range markers {
		if marker != "" && strings.Contains(title, marker) {
			return true
		}
	}
	return false
}
