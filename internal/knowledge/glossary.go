package knowledge

import (
	"strings"

	"github.com/kdurante/playbookmcp/internal/fuzzy"
)

// MetricEntry is one glossary definition: canonical name, folded
// aliases, and the definition text, attributed to its section.
type MetricEntry struct {
	Name       string
	Aliases    []string
	Definition string
	Breadcrumb string
}

// Glossary is the name→definition index over glossary-tagged sections.
type Glossary struct {
	Entries []*MetricEntry

	byKey map[string]*MetricEntry // normalized name or alias → entry
}

// maxTermLen is the longest block that can open a definition entry.
// Mirrors the source convention of short bolded lead terms.
const maxTermLen = 60

// buildGlossary scans glossary-tagged sections. Entry boundaries are
// structural: a child section heading, a table row, or a short lead
// block opens an entry; following body blocks extend its definition.
func buildGlossary(root *Section, warn warnFunc) *Glossary {
	g := &Glossary{byKey: map[string]*MetricEntry{}}

	root.Walk(func(s *Section) {
		if s.Kind != KindGlossary || hasAncestorKind(s, KindGlossary) {
			return
		}
		s.Walk(func(sub *Section) {
			g.harvest(sub, warn)
		})
	})

	return g
}

func (g *Glossary) harvest(s *Section, warn warnFunc) {
	crumb := s.Breadcrumb()

	// A glossary subsection whose own heading names the term.
	if !s.IsRoot() && s.Kind == KindGeneral && len(s.Blocks) > 0 && len(s.Title) <= maxTermLen {
		g.add(s.Title, s.BodyText(), crumb, warn)
	}

	var current *MetricEntry
	for _, b := range s.Blocks {
		if b.IsTable() {
			current = nil
			for i, row := range b.Table {
				if len(row) < 2 {
					warn("glossary table row %d in %q has %d cells, skipped", i, crumb, len(row))
					continue
				}
				if i == 0 && isGlossaryHeader(row) {
					continue
				}
				g.add(row[0], strings.Join(row[1:], " "), crumb, warn)
			}
			continue
		}

		if name, def, ok := splitTermLead(b.Text); ok {
			current = g.add(name, def, crumb, warn)
			continue
		}
		if current != nil && b.Text != "" {
			if current.Definition != "" {
				current.Definition += "\n\n"
			}
			current.Definition += b.Text
		}
	}
}

// add records an entry, folding parenthesized aliases and case. A
// duplicate name is overwritten — the later occurrence wins — and a
// warning is recorded.
func (g *Glossary) add(name, definition, crumb string, warn warnFunc) *MetricEntry {
	name, aliases := splitAliases(name)
	key := fuzzy.Normalize(name)
	if key == "" {
		return nil
	}

	if prev, ok := g.byKey[key]; ok {
		warn("glossary term %q defined again in %q, later definition wins", name, crumb)
		prev.Name = name
		prev.Definition = strings.TrimSpace(definition)
		prev.Breadcrumb = crumb
		prev.Aliases = mergeAliases(prev.Aliases, aliases)
		for _, a := range prev.Aliases {
			g.byKey[fuzzy.Normalize(a)] = prev
		}
		return prev
	}

	e := &MetricEntry{
		Name:       name,
		Aliases:    aliases,
		Definition: strings.TrimSpace(definition),
		Breadcrumb: crumb,
	}
	g.Entries = append(g.Entries, e)
	g.byKey[key] = e
	for _, a := range aliases {
		if ak := fuzzy.Normalize(a); ak != "" {
			g.byKey[ak] = e
		}
	}
	return e
}

// Define resolves a term. The exact path (case-insensitive match on
// name or alias) bypasses fuzzy scoring entirely; otherwise the term
// is ranked against all names and aliases.
func (g *Glossary) Define(term string, matchFloor, suggestionFloor float64) (*MetricEntry, []Suggestion) {
	if e, ok := g.byKey[fuzzy.Normalize(term)]; ok {
		return e, nil
	}

	type scored struct {
		entry *MetricEntry
		score float64
	}
	ranked := make([]scored, 0, len(g.Entries))
	for _, e := range g.Entries {
		best := fuzzy.Score(term, e.Name)
		for _, a := range e.Aliases {
			if s := fuzzy.Score(term, a); s > best {
				best = s
			}
		}
		ranked = append(ranked, scored{e, best})
	}
	stableSortByScore(ranked, func(s scored) float64 { return s.score })

	if len(ranked) == 0 {
		return nil, nil
	}
	if ranked[0].score >= matchFloor &&
		(len(ranked) == 1 || ranked[0].score-ranked[1].score >= ambiguityDelta) {
		return ranked[0].entry, nil
	}

	var suggestions []Suggestion
	for _, r := range ranked {
		if r.score < suggestionFloor || len(suggestions) == 3 {
			break
		}
		suggestions = append(suggestions, Suggestion{
			Name:       r.entry.Name,
			Score:      r.score,
			Breadcrumb: r.entry.Breadcrumb,
		})
	}
	return nil, suggestions
}

// splitTermLead detects a definition-opening block: a single short
// line, either "Term: rest" / "Term — rest" with a short left side, or
// a bare heading-like fragment without a terminal period.
func splitTermLead(text string) (name, def string, ok bool) {
	if text == "" || strings.Contains(text, "\n") {
		return "", "", false
	}
	for _, sep := range []string{": ", " — ", " – "} {
		if i := strings.Index(text, sep); i > 0 && i <= maxTermLen {
			return strings.TrimSpace(text[:i]), strings.TrimSpace(text[i+len(sep):]), true
		}
	}
	if len(text) <= maxTermLen && !strings.HasSuffix(text, ".") && len(strings.Fields(text)) <= 6 {
		return text, "", true
	}
	return "", "", false
}

// splitAliases folds a parenthesized alias out of a term name, e.g.
// "Session (GA4 Session)" → "Session" + alias "GA4 Session".
func splitAliases(name string) (string, []string) {
	open := strings.Index(name, "(")
	end := strings.LastIndex(name, ")")
	if open <= 0 || end <= open {
		return strings.TrimSpace(name), nil
	}
	alias := strings.TrimSpace(name[open+1 : end])
	base := strings.TrimSpace(name[:open] + name[end+1:])
	if alias == "" {
		return base, nil
	}
	return base, []string{alias}
}

func isGlossaryHeader(row []string) bool {
	switch strings.ToLower(strings.TrimSpace(row[0])) {
	case "term", "name", "metric", "dimension":
		return true
	}
	return false
}

func mergeAliases(existing, extra []string) []string {
	for _, a := range extra {
		dup := false
		for _, e := range existing {
			if strings.EqualFold(e, a) {
				dup = true
				break
			}
		}
		if !dup {
			existing = append(existing, a)
		}
	}
	return existing
}
