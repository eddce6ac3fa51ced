package knowledge

import (
	"regexp"
	"strings"

	"github.com/kdurante/playbookmcp/internal/fuzzy"
)

// ComplianceRule is one extracted limit or compliance rule. Limit is
// string-typed: it may be numeric, boolean, or free text. Multiple
// rules may share platform and category.
type ComplianceRule struct {
	Platform    string
	Category    string
	Limit       string
	Description string
	Breadcrumb  string
}

// ComplianceIndex holds rules extracted from compliance-tagged
// sections, in source order.
type ComplianceIndex struct {
	Rules []ComplianceRule

	platforms []string
}

// categoryPatterns map rule-sentence keywords to a canonical category.
// Order matters: the first matching group names the category.
var categoryPatterns = []struct {
	category string
	keywords []string
}{
	{"Cookie Consent", []string{"cookie", "consent"}},
	{"Age Restriction", []string{"age", "minor", "under 13", "under 16"}},
	{"Data Retention", []string{"retention", "retain", "expire"}},
	{"Privacy", []string{"pii", "personal data", "identifier", "gdpr", "ccpa"}},
	{"Technical Limit", []string{"limit", "quota", "maximum", "at most", "up to", "event", "propert", "sampling", "cardinality"}},
}

var numberClause = regexp.MustCompile(`\d[\d,.]*\s*%?`)

var booleanWords = []string{
	"must", "must not", "required", "prohibited", "never", "cannot",
	"not allowed", "allowed", "mandatory", "forbidden",
}

// buildCompliance extracts rules from tables (column-mapped) and prose
// (keyword + quantifiable clause) in compliance-tagged sections.
func buildCompliance(root *Section, platforms []string, warn warnFunc) *ComplianceIndex {
	ci := &ComplianceIndex{platforms: platforms}

	root.Walk(func(s *Section) {
		if s.Kind != KindCompliance || hasAncestorKind(s, KindCompliance) {
			return
		}
		s.Walk(func(sub *Section) {
			ci.harvest(sub, warn)
		})
	})

	return ci
}

func (ci *ComplianceIndex) harvest(s *Section, warn warnFunc) {
	crumb := s.Breadcrumb()

	for _, b := range s.Blocks {
		if b.IsTable() {
			ci.harvestTable(b.Table, crumb, warn)
			continue
		}
		for _, sentence := range splitSentences(b.Text) {
			if rule, ok := ci.proseRule(sentence, crumb); ok {
				ci.Rules = append(ci.Rules, rule)
			}
		}
	}
}

func (ci *ComplianceIndex) harvestTable(rows [][]string, crumb string, warn warnFunc) {
	cols := mapRuleColumns(rows[0])
	start := 0
	if cols != nil {
		start = 1 // header row consumed
	} else {
		cols = &ruleColumns{platform: 0, category: 1, limit: 2, description: 3}
	}

	for i := start; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 2 {
			warn("compliance table row %d in %q has %d cells, skipped", i, crumb, len(row))
			continue
		}
		rule := ComplianceRule{
			Platform:    cell(row, cols.platform),
			Category:    cell(row, cols.category),
			Limit:       cell(row, cols.limit),
			Description: cell(row, cols.description),
			Breadcrumb:  crumb,
		}
		if rule.Platform == "" {
			rule.Platform = "General"
		}
		if rule.Category == "" {
			warn("compliance table row %d in %q has no category, skipped", i, crumb)
			continue
		}
		ci.Rules = append(ci.Rules, rule)
	}
}

// proseRule recognizes a rule sentence: it needs a category keyword and
// a quantifiable or boolean clause.
func (ci *ComplianceIndex) proseRule(sentence, crumb string) (ComplianceRule, bool) {
	lower := strings.ToLower(sentence)

	category := ""
	for _, cp := range categoryPatterns {
		if matchesAny(lower, cp.keywords) {
			category = cp.category
			break
		}
	}
	if category == "" {
		return ComplianceRule{}, false
	}

	limit := numberClause.FindString(sentence)
	if limit == "" {
		for _, w := range booleanWords {
			if strings.Contains(lower, w) {
				limit = w
				break
			}
		}
	}
	if limit == "" {
		return ComplianceRule{}, false
	}

	platform := "General"
	for _, p := range ci.platforms {
		if strings.Contains(lower, strings.ToLower(p)) {
			platform = p
			break
		}
	}

	return ComplianceRule{
		Platform:    platform,
		Category:    category,
		Limit:       strings.TrimSpace(limit),
		Description: strings.TrimSpace(sentence),
		Breadcrumb:  crumb,
	}, true
}

// Check returns rules whose category fuzzily matches the topic. With a
// platform, the result keeps that platform's rules plus "General" ones,
// platform-specific first, then source order. The found flag
// distinguishes "the playbook does not cover this topic" from "covered,
// but no rule applies to the requested platform".
func (ci *ComplianceIndex) Check(topic, platform string, matchFloor, suggestionFloor float64) (rules []ComplianceRule, found bool, suggestions []Suggestion) {
	type scored struct {
		rule  ComplianceRule
		score float64
	}
	var matched []scored
	for _, r := range ci.Rules {
		score := fuzzy.Score(topic, r.Category)
		if s := fuzzy.Score(topic, r.Category+" "+r.Description); s > score {
			score = s
		}
		if score >= matchFloor {
			matched = append(matched, scored{r, score})
		}
	}

	if len(matched) == 0 {
		seen := map[string]bool{}
		var cands []fuzzy.Candidate
		for _, r := range ci.Rules {
			if !seen[r.Category] {
				seen[r.Category] = true
				cands = append(cands, fuzzy.Candidate{Key: r.Category, Text: r.Category})
			}
		}
		for _, m := range fuzzy.Rank(topic, cands) {
			if m.Score < suggestionFloor || len(suggestions) == 3 {
				break
			}
			suggestions = append(suggestions, Suggestion{Name: m.Key, Score: m.Score})
		}
		return nil, false, suggestions
	}

	if platform != "" {
		var specific, general []ComplianceRule
		for _, m := range matched {
			switch {
			case strings.EqualFold(m.rule.Platform, platform):
				specific = append(specific, m.rule)
			case strings.EqualFold(m.rule.Platform, "General"):
				general = append(general, m.rule)
			}
		}
		return append(specific, general...), true, nil
	}

	for _, m := range matched {
		rules = append(rules, m.rule)
	}
	return rules, true, nil
}

type ruleColumns struct {
	platform, category, limit, description int
}

// mapRuleColumns detects a header row and maps columns by name.
// Returns nil when the first row does not look like a header.
func mapRuleColumns(header []string) *ruleColumns {
	cols := &ruleColumns{platform: -1, category: -1, limit: -1, description: -1}
	for i, h := range header {
		switch {
		case containsFold(h, "platform", "tool", "vendor"):
			cols.platform = i
		case containsFold(h, "category", "topic", "area", "rule"):
			cols.category = i
		case containsFold(h, "limit", "value", "threshold", "restriction"):
			cols.limit = i
		case containsFold(h, "description", "detail", "note"):
			cols.description = i
		}
	}
	if cols.category == -1 || (cols.platform == -1 && cols.limit == -1) {
		return nil
	}
	return cols
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func containsFold(s string, subs ...string) bool {
	l := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}

// splitSentences does basic sentence splitting on terminal punctuation.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?' || r == '\n') &&
			(i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n') {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
