package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kdurante/playbookmcp/internal/api"
	"github.com/kdurante/playbookmcp/internal/config"
	"github.com/kdurante/playbookmcp/internal/feedback"
	"github.com/kdurante/playbookmcp/internal/knowledge"
	"github.com/kdurante/playbookmcp/internal/tools"
)

const version = "0.1.0"

func main() {
	cfg := config.Load()

	// In MCP mode stdout carries the JSON-RPC stream, so logs go to
	// stderr in every mode.
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kbCfg := knowledge.DefaultConfig()
	kbCfg.MatchFloor = cfg.MatchFloor
	kbCfg.SuggestionFloor = cfg.SuggestionFloor
	if cfg.GlossaryMarkers != nil {
		kbCfg.Markers.Glossary = cfg.GlossaryMarkers
	}
	if cfg.ComplianceMarkers != nil {
		kbCfg.Markers.Compliance = cfg.ComplianceMarkers
	}
	if cfg.ComparisonMarkers != nil {
		kbCfg.Markers.Comparison = cfg.ComparisonMarkers
	}
	if cfg.IssueMarkers != nil {
		kbCfg.Markers.Issue = cfg.IssueMarkers
	}
	if cfg.Platforms != nil {
		kbCfg.Platforms = cfg.Platforms
	}
	kbCfg.Parse.PDFFallbackPdftotext = cfg.PDFFallbackPdftotext

	// A load failure is not fatal: the store serves an empty knowledge
	// base and every tool answers with a no-data message.
	store, err := knowledge.OpenStore(cfg.PlaybookPath, kbCfg)
	if err != nil {
		log.Error("playbook load failed, serving degraded", "path", cfg.PlaybookPath, "error", err)
	} else {
		kb := store.Current()
		log.Info("playbook loaded",
			"path", cfg.PlaybookPath,
			"sections", len(kb.Sections),
			"glossary_entries", len(kb.Glossary.Entries),
			"compliance_rules", len(kb.Compliance.Rules),
			"comparisons", len(kb.Comparisons.Entries),
			"issues", len(kb.Issues.Entries),
			"warnings", len(kb.Warnings),
		)
		for _, w := range kb.Warnings {
			log.Warn("playbook warning", "detail", w)
		}
	}

	reporter := feedback.NewReporter(cfg.FeedbackLog, cfg.FeedbackWebhookURL, cfg.FeedbackAPIKey, log)
	defer reporter.Close()

	router := tools.NewRouter(store, reporter, log)

	errCh := make(chan error, 2)
	var httpServer *http.Server

	if cfg.ServeMode == config.ModeHTTP || cfg.ServeMode == config.ModeBoth {
		srv := api.NewServer(router, store, cfg.APIKey, log)
		httpServer = &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      srv,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			log.Info("starting http server", "port", cfg.Port)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()
	}

	if cfg.ServeMode == config.ModeMCP || cfg.ServeMode == config.ModeBoth {
		srv := mcp.NewServer(&mcp.Implementation{Name: "playbookmcp", Version: version}, nil)
		router.RegisterMCP(srv)
		go func() {
			log.Info("starting mcp server on stdio")
			if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
				errCh <- err
			}
			// A closed stdin is a normal client disconnect.
			cancel()
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("shutting down...")
	case <-ctx.Done():
	case err := <-errCh:
		log.Error("server error", "error", err)
	}

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}
}
