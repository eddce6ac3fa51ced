package fuzzy

import (
	"sort"
	"strings"
	"unicode"

	"github.com/xrash/smetrics"
)

// Normalize lowercases, replaces punctuation with spaces, and collapses
// runs of whitespace. Letters and digits of any script survive, so
// accented terms stay indexable. Queries and candidates must go through
// the same normalization before scoring.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Ratio is the indel similarity of two normalized strings on a 0-100 scale.
// Substitutions cost 2, so the distance reduces to insertions+deletions.
func Ratio(a, b string) float64 {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	dist := smetrics.WagnerFischer(a, b, 1, 1, 2)
	total := len(a) + len(b)
	score := (1 - float64(dist)/float64(total)) * 100
	return clamp(score)
}

// PartialRatio slides the shorter string across the longer one and
// returns the best window Ratio. A full substring scores 100.
func PartialRatio(a, b string) float64 {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	if strings.Contains(long, short) {
		return 100
	}
	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		if s := Ratio(short, long[i:i+len(short)]); s > best {
			best = s
		}
	}
	return best
}

// TokenSetRatio compares the unique sorted token sets of both strings,
// so word order and duplicates do not matter ("Consent Cookie" matches
// "Cookie Consent").
func TokenSetRatio(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		if len(ta) == 0 && len(tb) == 0 {
			return 100
		}
		return 0
	}

	var inter, onlyA, onlyB []string
	for _, t := range ta {
		if contains(tb, t) {
			inter = append(inter, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for _, t := range tb {
		if !contains(ta, t) {
			onlyB = append(onlyB, t)
		}
	}

	base := strings.Join(inter, " ")
	combA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	combB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	best := Ratio(base, combA)
	if s := Ratio(base, combB); s > best {
		best = s
	}
	if s := Ratio(combA, combB); s > best {
		best = s
	}
	return best
}

// Score is the similarity used by every index: the max of token-set and
// partial ratio over normalized inputs. Token-set handles reordering,
// partial handles sub-phrase references ("session" in "Session Duration").
func Score(query, candidate string) float64 {
	q, c := Normalize(query), Normalize(candidate)
	s := TokenSetRatio(q, c)
	if p := PartialRatio(q, c); p > s {
		s = p
	}
	return s
}

// Candidate is one scorable item.
type Candidate struct {
	Key  string // identifier returned in the match
	Text string // text scored against the query
}

// Match is a scored candidate.
type Match struct {
	Key   string
	Score float64
}

// Rank scores every candidate against the query and returns matches
// sorted by descending score. Ties keep source order (stable sort).
func Rank(query string, candidates []Candidate) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		matches = append(matches, Match{Key: c.Key, Score: Score(query, c.Text)})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// CommonTokenPrefix counts how many leading tokens two strings share
// after normalization. Used as a tie-breaker for near-equal scores.
func CommonTokenPrefix(a, b string) int {
	ta := strings.Fields(Normalize(a))
	tb := strings.Fields(Normalize(b))
	n := 0
	for n < len(ta) && n < len(tb) && ta[n] == tb[n] {
		n++
	}
	return n
}

func tokenSet(s string) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range strings.Fields(s) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

func contains(set []string, t string) bool {
	for _, s := range set {
		if s == t {
			return true
		}
	}
	return false
}

func clamp(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
