package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ServeMode selects which host surfaces run.
type ServeMode string

const (
	ModeMCP  ServeMode = "mcp"
	ModeHTTP ServeMode = "http"
	ModeBoth ServeMode = "both"
)

type Config struct {
	// Source document
	PlaybookPath string

	// Serving
	ServeMode ServeMode
	Port      string

	// Auth
	APIKey string

	// Fuzzy thresholds (0-100)
	MatchFloor      float64
	SuggestionFloor float64

	// Section classification markers, comma-separated overrides
	GlossaryMarkers   []string
	ComplianceMarkers []string
	ComparisonMarkers []string
	IssueMarkers      []string

	// Known platform names for compliance and comparison lookups
	Platforms []string

	// Feedback sink
	FeedbackLog        string
	FeedbackWebhookURL string
	FeedbackAPIKey     string

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		PlaybookPath: os.Getenv("PLAYBOOK_PATH"),

		ServeMode: ServeMode(envOr("SERVE_MODE", string(ModeMCP))),
		Port:      envOr("PORT", "8090"),

		APIKey: os.Getenv("PLAYBOOK_API_KEY"),

		MatchFloor:      envFloat("MATCH_FLOOR", 65),
		SuggestionFloor: envFloat("SUGGESTION_FLOOR", 40),

		GlossaryMarkers:   envList("GLOSSARY_MARKERS"),
		ComplianceMarkers: envList("COMPLIANCE_MARKERS"),
		ComparisonMarkers: envList("COMPARISON_MARKERS"),
		IssueMarkers:      envList("ISSUE_MARKERS"),

		Platforms: envList("PLATFORMS"),

		FeedbackLog:        envOr("FEEDBACK_LOG", "feedback.log"),
		FeedbackWebhookURL: os.Getenv("FEEDBACK_WEBHOOK_URL"),
		FeedbackAPIKey:     os.Getenv("FEEDBACK_API_KEY"),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.MatchFloor <= 0 || cfg.MatchFloor > 100 {
		cfg.MatchFloor = 65
	}
	if cfg.SuggestionFloor <= 0 || cfg.SuggestionFloor > 100 {
		cfg.SuggestionFloor = 40
	}
	if cfg.SuggestionFloor > cfg.MatchFloor {
		cfg.SuggestionFloor = cfg.MatchFloor
	}

	return cfg
}

func (c Config) Validate() error {
	if c.PlaybookPath == "" {
		return fmt.Errorf("PLAYBOOK_PATH is required")
	}
	switch c.ServeMode {
	case ModeMCP, ModeHTTP, ModeBoth:
	default:
		return fmt.Errorf("SERVE_MODE must be mcp, http, or both, got %q", c.ServeMode)
	}
	if (c.ServeMode == ModeHTTP || c.ServeMode == ModeBoth) && c.APIKey == "" {
		return fmt.Errorf("PLAYBOOK_API_KEY is required when serving HTTP")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// envList splits a comma-separated value, trimming blanks. Empty or
// unset returns nil so package defaults apply.
func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
