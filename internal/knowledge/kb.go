package knowledge

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kdurante/playbookmcp/internal/docsource"
)

// Suggestion is a near-miss candidate surfaced when a query scores
// below the match floor.
type Suggestion struct {
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	Breadcrumb string  `json:"breadcrumb,omitempty"`
}

// Config holds the load-time knowledge parameters.
type Config struct {
	MatchFloor      float64           // minimum score for a confident answer
	SuggestionFloor float64           // minimum score to surface a near-miss
	Markers         Markers           // section-title classification markers
	Platforms       []string          // platform names recognized in rules and comparisons
	Parse           docsource.Options // source parsing options
}

// DefaultConfig returns the thresholds and markers tuned for the
// analytics playbook.
func DefaultConfig() Config {
	return Config{
		MatchFloor:      65,
		SuggestionFloor: 40,
		Markers:         DefaultMarkers(),
		Platforms:       []string{"GA4", "Segment", "Shopify", "Google Ads", "Meta"},
		Parse:           docsource.DefaultOptions(),
	}
}

// KnowledgeBase is the immutable bundle of all indices derived from one
// document load. It is built once and never mutated; concurrent readers
// need no locking.
type KnowledgeBase struct {
	Root        *Section
	Sections    []SectionRef
	Glossary    *Glossary
	Compliance  *ComplianceIndex
	Comparisons *ComparisonIndex
	Issues      *IssueIndex
	Warnings    []string

	SourcePath string
	LoadedAt   time.Time

	cfg Config
}

type warnFunc func(format string, args ...any)

// Build derives every index from the block sequence. Extraction faults
// are recovered locally: a malformed row is skipped and a warning
// recorded, never aborting the build.
func Build(blocks []docsource.Block, cfg Config) *KnowledgeBase {
	if cfg.MatchFloor == 0 {
		cfg.MatchFloor = DefaultConfig().MatchFloor
	}
	if cfg.SuggestionFloor == 0 {
		cfg.SuggestionFloor = DefaultConfig().SuggestionFloor
	}
	if len(cfg.Platforms) == 0 {
		cfg.Platforms = DefaultConfig().Platforms
	}
	emptyMarkers := len(cfg.Markers.Glossary) == 0 && len(cfg.Markers.Compliance) == 0 &&
		len(cfg.Markers.Comparison) == 0 && len(cfg.Markers.Issue) == 0
	if emptyMarkers {
		cfg.Markers = DefaultMarkers()
	}

	kb := &KnowledgeBase{cfg: cfg, LoadedAt: time.Now()}
	warn := func(format string, args ...any) {
		kb.Warnings = append(kb.Warnings, fmt.Sprintf(format, args...))
	}

	kb.Root = BuildTree(blocks)
	ClassifyTree(kb.Root, cfg.Markers)
	kb.Sections = Flatten(kb.Root)
	kb.Glossary = buildGlossary(kb.Root, warn)
	kb.Compliance = buildCompliance(kb.Root, cfg.Platforms, warn)
	kb.Comparisons = buildComparisons(kb.Root, warn)
	kb.Issues = buildIssues(kb.Root, warn)

	return kb
}

// Load reads the document at path and builds the knowledge base. On
// read failure it returns an empty but fully usable knowledge base
// alongside the error, so the caller can keep serving "no data"
// answers.
func Load(path string, cfg Config) (*KnowledgeBase, error) {
	blocks, err := docsource.ReadFileOpts(path, cfg.Parse)
	if err != nil {
		kb := Build(nil, cfg)
		kb.SourcePath = path
		return kb, fmt.Errorf("load document: %w", err)
	}
	kb := Build(blocks, cfg)
	kb.SourcePath = path
	return kb, nil
}

// Empty reports whether the knowledge base holds no sections at all.
func (kb *KnowledgeBase) Empty() bool {
	return len(kb.Sections) == 0
}

// Outline renders the table of contents.
func (kb *KnowledgeBase) Outline() string {
	return Outline(kb.Sections)
}

// FindSection resolves a query to a section ref.
func (kb *KnowledgeBase) FindSection(query string) (*SectionRef, []Suggestion) {
	return findSection(kb.Sections, query, kb.cfg.MatchFloor, kb.cfg.SuggestionFloor)
}

// Define resolves a metric or dimension term.
func (kb *KnowledgeBase) Define(term string) (*MetricEntry, []Suggestion) {
	return kb.Glossary.Define(term, kb.cfg.MatchFloor, kb.cfg.SuggestionFloor)
}

// CheckCompliance returns the rules matching a topic, optionally
// filtered to a platform plus "General" rules.
func (kb *KnowledgeBase) CheckCompliance(topic, platform string) ([]ComplianceRule, bool, []Suggestion) {
	return kb.Compliance.Check(topic, platform, kb.cfg.MatchFloor, kb.cfg.SuggestionFloor)
}

// Compare resolves a comparison dimension.
func (kb *KnowledgeBase) Compare(dimension string, platforms []string) (*ComparisonEntry, []Suggestion) {
	return kb.Comparisons.Compare(dimension, platforms, kb.cfg.MatchFloor, kb.cfg.SuggestionFloor)
}

// Solve ranks troubleshooting entries against a symptom.
func (kb *KnowledgeBase) Solve(symptom string) ([]*IssueEntry, []Suggestion) {
	return kb.Issues.Solve(symptom, kb.cfg.MatchFloor, kb.cfg.SuggestionFloor)
}

// Store holds the process-wide knowledge base behind an atomic pointer.
// Reload builds a complete new knowledge base off to the side and swaps
// the pointer, so readers never observe partial state.
type Store struct {
	current atomic.Pointer[KnowledgeBase]

	mu    sync.Mutex // serializes reloads
	path  string
	cfg   Config
	mtime time.Time
}

// OpenStore loads the document once and returns the store. The error
// is non-fatal: the store still serves an empty knowledge base.
func OpenStore(path string, cfg Config) (*Store, error) {
	s := &Store{path: path, cfg: cfg}
	kb, err := Load(path, cfg)
	s.current.Store(kb)
	if fi, statErr := os.Stat(path); statErr == nil {
		s.mtime = fi.ModTime()
	}
	return s, err
}

// NewStore wraps an already-built knowledge base, for tests and
// embedded use.
func NewStore(kb *KnowledgeBase) *Store {
	s := &Store{path: kb.SourcePath, cfg: kb.cfg}
	s.current.Store(kb)
	return s
}

// Current returns the active knowledge base. Never nil.
func (s *Store) Current() *KnowledgeBase {
	return s.current.Load()
}

// Reload rebuilds from the source document if its mtime changed (or
// force is set) and atomically swaps the active knowledge base.
// Returns whether a rebuild happened.
func (s *Store) Reload(force bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fi, err := os.Stat(s.path)
	if err != nil {
		return false, fmt.Errorf("stat document: %w", err)
	}
	if !force && fi.ModTime().Equal(s.mtime) {
		return false, nil
	}

	kb, err := Load(s.path, s.cfg)
	if err != nil {
		return false, err
	}
	s.current.Store(kb)
	s.mtime = fi.ModTime()
	return true, nil
}

// hasAncestorKind reports whether any ancestor of s carries the kind.
// Used to avoid double-harvesting nested tagged sections.
func hasAncestorKind(s *Section, kind SectionKind) bool {
	for p := s.parent; p != nil; p = p.parent {
		if p.Kind == kind {
			return true
		}
	}
	return false
}

// stableSortByScore sorts items by descending score, keeping source
// order for ties.
func stableSortByScore[T any](items []T, score func(T) float64) {
	sort.SliceStable(items, func(i, j int) bool {
		return score(items[i]) > score(items[j])
	})
}
