// Package tools exposes the playbook knowledge base as the six named
// tool operations. Every answer cites the owning section's breadcrumb;
// a query below the match floor returns ranked suggestions instead of
// an empty result.
package tools

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/kdurante/playbookmcp/internal/feedback"
	"github.com/kdurante/playbookmcp/internal/knowledge"
)

// noDataMessage answers every operation when the document failed to
// load. The process keeps serving instead of crashing the host.
const noDataMessage = "No playbook data available. The source document is missing or empty."

// Router dispatches tool operations against the current knowledge base.
type Router struct {
	store    *knowledge.Store
	reporter *feedback.Reporter
	log      *slog.Logger
}

func NewRouter(store *knowledge.Store, reporter *feedback.Reporter, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{store: store, reporter: reporter, log: log}
}

// OverviewSection is one top-level section with its subsection titles.
type OverviewSection struct {
	Title      string   `json:"title"`
	Breadcrumb string   `json:"breadcrumb"`
	Subtopics  []string `json:"subtopics,omitempty"`
}

// OverviewResult is the structural overview of the whole playbook.
type OverviewResult struct {
	Sections []OverviewSection `json:"sections"`
	Outline  string            `json:"outline,omitempty"`
	Message  string            `json:"message,omitempty"`
}

// Overview renders the table of contents: titles and breadcrumbs only,
// body text truncated away entirely.
func (r *Router) Overview(ctx context.Context) OverviewResult {
	kb := r.store.Current()
	if kb.Empty() {
		return OverviewResult{Message: noDataMessage}
	}

	var out OverviewResult
	for _, top := range kb.Root.Children {
		sec := OverviewSection{
			Title:      top.Title,
			Breadcrumb: top.Breadcrumb(),
		}
		top.Walk(func(s *knowledge.Section) {
			if s != top {
				sec.Subtopics = append(sec.Subtopics, s.Title)
			}
		})
		out.Sections = append(out.Sections, sec)
	}
	out.Outline = kb.Outline()
	return out
}

// DefinitionResult answers get_metric_definition.
type DefinitionResult struct {
	Term        string                 `json:"term"`
	Definition  string                 `json:"definition,omitempty"`
	Aliases     []string               `json:"aliases,omitempty"`
	Source      string                 `json:"source,omitempty"`
	Suggestions []knowledge.Suggestion `json:"suggestions,omitempty"`
	Message     string                 `json:"message,omitempty"`
}

func (r *Router) Definition(ctx context.Context, term string) (DefinitionResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return DefinitionResult{}, errors.New("term must not be empty")
	}

	kb := r.store.Current()
	if kb.Empty() {
		return DefinitionResult{Term: term, Message: noDataMessage}, nil
	}

	entry, suggestions := kb.Define(term)
	if entry == nil {
		return DefinitionResult{
			Term:        term,
			Suggestions: suggestions,
			Message:     "No confident match in the glossary.",
		}, nil
	}
	return DefinitionResult{
		Term:       entry.Name,
		Definition: entry.Definition,
		Aliases:    entry.Aliases,
		Source:     entry.Breadcrumb,
	}, nil
}

// IssueMatch is one troubleshooting answer.
type IssueMatch struct {
	Symptom    string   `json:"symptom"`
	Diagnosis  []string `json:"diagnosis,omitempty"`
	Resolution string   `json:"resolution,omitempty"`
	Source     string   `json:"source"`
}

// IssueResult answers solve_analytics_issue.
type IssueResult struct {
	Query       string                 `json:"query"`
	Matches     []IssueMatch           `json:"matches,omitempty"`
	Suggestions []knowledge.Suggestion `json:"suggestions,omitempty"`
	Message     string                 `json:"message,omitempty"`
}

func (r *Router) SolveIssue(ctx context.Context, symptom string) (IssueResult, error) {
	symptom = strings.TrimSpace(symptom)
	if symptom == "" {
		return IssueResult{}, errors.New("symptom must not be empty")
	}

	kb := r.store.Current()
	if kb.Empty() {
		return IssueResult{Query: symptom, Message: noDataMessage}, nil
	}

	matches, suggestions := kb.Solve(symptom)
	out := IssueResult{Query: symptom}
	for _, m := range matches {
		out.Matches = append(out.Matches, IssueMatch{
			Symptom:    m.Symptom,
			Diagnosis:  m.Diagnosis,
			Resolution: m.Resolution,
			Source:     m.Breadcrumb,
		})
	}
	if len(out.Matches) == 0 {
		out.Suggestions = suggestions
		out.Message = "No matching solution found."
	}
	return out, nil
}

// ComplianceResult answers check_limits_and_compliance. Covered
// distinguishes "the playbook does not address this topic" from
// "addressed, but no rule applies to the requested platform".
type ComplianceResult struct {
	Topic       string                 `json:"topic"`
	Platform    string                 `json:"platform,omitempty"`
	Covered     bool                   `json:"covered"`
	Rules       []ComplianceRuleView   `json:"rules,omitempty"`
	Suggestions []knowledge.Suggestion `json:"suggestions,omitempty"`
	Message     string                 `json:"message,omitempty"`
}

type ComplianceRuleView struct {
	Platform    string `json:"platform"`
	Category    string `json:"category"`
	Limit       string `json:"limit,omitempty"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
}

func (r *Router) CheckCompliance(ctx context.Context, topic, platform string) (ComplianceResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ComplianceResult{}, errors.New("topic must not be empty")
	}

	kb := r.store.Current()
	if kb.Empty() {
		return ComplianceResult{Topic: topic, Platform: platform, Message: noDataMessage}, nil
	}

	rules, found, suggestions := kb.CheckCompliance(topic, platform)
	out := ComplianceResult{Topic: topic, Platform: platform, Covered: found}
	for _, rule := range rules {
		out.Rules = append(out.Rules, ComplianceRuleView{
			Platform:    rule.Platform,
			Category:    rule.Category,
			Limit:       rule.Limit,
			Description: rule.Description,
			Source:      rule.Breadcrumb,
		})
	}
	switch {
	case !found:
		out.Suggestions = suggestions
		out.Message = "No compliance or limit information found for this topic."
	case len(out.Rules) == 0:
		out.Message = "The topic is covered, but no rule applies to the requested platform."
	}
	return out, nil
}

// CompareResult answers compare_platform_strategy.
type CompareResult struct {
	Dimension   string                 `json:"dimension"`
	Verdicts    []VerdictView          `json:"verdicts,omitempty"`
	Rationale   string                 `json:"rationale,omitempty"`
	Source      string                 `json:"source,omitempty"`
	Suggestions []knowledge.Suggestion `json:"suggestions,omitempty"`
	Message     string                 `json:"message,omitempty"`
}

type VerdictView struct {
	Platform string `json:"platform"`
	Verdict  string `json:"verdict"`
}

func (r *Router) Compare(ctx context.Context, dimension string, platforms []string) (CompareResult, error) {
	dimension = strings.TrimSpace(dimension)
	if dimension == "" {
		return CompareResult{}, errors.New("dimension must not be empty")
	}

	kb := r.store.Current()
	if kb.Empty() {
		return CompareResult{Dimension: dimension, Message: noDataMessage}, nil
	}

	entry, suggestions := kb.Compare(dimension, platforms)
	if entry == nil {
		return CompareResult{
			Dimension:   dimension,
			Suggestions: suggestions,
			Message:     "No strategic comparison found for this dimension.",
		}, nil
	}
	out := CompareResult{
		Dimension: entry.Dimension,
		Rationale: entry.Rationale,
		Source:    entry.Breadcrumb,
	}
	for _, v := range entry.Verdicts {
		out.Verdicts = append(out.Verdicts, VerdictView{Platform: v.Platform, Verdict: v.Verdict})
	}
	return out, nil
}

// ReportResult acknowledges report_documentation_issue.
type ReportResult struct {
	Acknowledged bool   `json:"acknowledged"`
	Message      string `json:"message"`
}

func (r *Router) ReportIssue(ctx context.Context, sectionRef, note string) (ReportResult, error) {
	sectionRef = strings.TrimSpace(sectionRef)
	note = strings.TrimSpace(note)
	if sectionRef == "" || note == "" {
		return ReportResult{}, errors.New("section and note must not be empty")
	}

	if err := r.reporter.Submit(ctx, feedback.Report{Section: sectionRef, Note: note}); err != nil {
		r.log.Error("feedback submit failed", "error", err)
		return ReportResult{}, err
	}
	return ReportResult{
		Acknowledged: true,
		Message:      "Thank you. Your feedback has been logged for the data governance team.",
	}, nil
}
