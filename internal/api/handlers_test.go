package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kdurante/playbookmcp/internal/docsource"
	"github.com/kdurante/playbookmcp/internal/feedback"
	"github.com/kdurante/playbookmcp/internal/knowledge"
	"github.com/kdurante/playbookmcp/internal/tools"
)

const testAPIKey = "test-key"

const playbookFixture = `# Analytics Playbook

## Dimensions and Metrics

Session: A window of user activity that ends after 30 minutes of inactivity.

## Limits and Restrictions

| Platform | Category | Limit | Description |
| --- | --- | --- | --- |
| GA4 | Cookie Consent | required | Consent Mode must be enabled before cookies are set. |

## Choosing a Platform

| Use case | GA4 | Segment |
| --- | --- | --- |
| Identity resolution | Limited cross-device support | Strong via Personas profiles |

## Troubleshooting

### Sessions lower than expected

Check the Consent Mode configuration on every page.

Resolution: Align reporting timezones and re-verify tag firing.
`

func testServer(t *testing.T) *Server {
	t.Helper()
	p := &docsource.MarkdownSource{}
	blocks, err := p.Parse(strings.NewReader(playbookFixture), "playbook.md")
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	store := knowledge.NewStore(knowledge.Build(blocks, knowledge.DefaultConfig()))

	logPath := filepath.Join(t.TempDir(), "feedback.log")
	reporter := feedback.NewReporter(logPath, "", "", slog.Default())
	t.Cleanup(reporter.Close)

	router := tools.NewRouter(store, reporter, slog.Default())
	return NewServer(router, store, testAPIKey, slog.Default())
}

func doRequest(t *testing.T, s *Server, method, target string, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	if authed {
		r.Header.Set("Authorization", "Bearer "+testAPIKey)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)
	return w
}

func TestHealth_NoAuth(t *testing.T) {
	s := testServer(t)

	w := doRequest(t, s, http.MethodGet, "/health", "", false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Status   string `json:"status"`
		Degraded bool   `json:"degraded"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != "ok" || resp.Degraded {
		t.Errorf("unexpected health %+v", resp)
	}
}

func TestAuth_Required(t *testing.T) {
	s := testServer(t)

	w := doRequest(t, s, http.MethodGet, "/api/overview", "", false)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without key, got %d", w.Code)
	}
	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil || errResp.Error == "" {
		t.Errorf("expected JSON error body, got %q", w.Body.String())
	}

	r := httptest.NewRequest(http.MethodGet, "/api/overview", nil)
	r.Header.Set("Authorization", "Bearer wrong-key")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, r)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong key, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON error content type, got %q", ct)
	}
}

func TestOverviewEndpoint(t *testing.T) {
	s := testServer(t)

	w := doRequest(t, s, http.MethodGet, "/api/overview", "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp tools.OverviewResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Sections) != 1 || resp.Sections[0].Title != "Analytics Playbook" {
		t.Errorf("unexpected sections %+v", resp.Sections)
	}
}

func TestDefinitionEndpoint(t *testing.T) {
	s := testServer(t)

	w := doRequest(t, s, http.MethodGet, "/api/definition?term=session", "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp tools.DefinitionResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !strings.Contains(resp.Definition, "30 minutes") {
		t.Errorf("unexpected definition %q", resp.Definition)
	}
}

func TestDefinitionEndpoint_MissingTerm(t *testing.T) {
	s := testServer(t)

	w := doRequest(t, s, http.MethodGet, "/api/definition", "", true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestComplianceEndpoint(t *testing.T) {
	s := testServer(t)

	w := doRequest(t, s, http.MethodGet, "/api/compliance?topic=cookie+consent&platform=GA4", "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp tools.ComplianceResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Covered || len(resp.Rules) == 0 {
		t.Errorf("expected rules, got %+v", resp)
	}
}

func TestCompareEndpoint(t *testing.T) {
	s := testServer(t)

	w := doRequest(t, s, http.MethodGet, "/api/compare?dimension=identity+resolution&platforms=Segment", "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp tools.CompareResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Verdicts) != 1 || resp.Verdicts[0].Platform != "Segment" {
		t.Errorf("unexpected verdicts %+v", resp.Verdicts)
	}
}

func TestIssuesEndpoint(t *testing.T) {
	s := testServer(t)

	w := doRequest(t, s, http.MethodGet, "/api/issues?symptom=sessions+lower+than+expected", "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp tools.IssueResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Matches) == 0 {
		t.Errorf("expected a match, got %+v", resp)
	}
}

func TestFeedbackEndpoint(t *testing.T) {
	s := testServer(t)

	body := `{"section":"Limits and Restrictions","note":"Outdated limit."}`
	w := doRequest(t, s, http.MethodPost, "/api/feedback", body, true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp tools.ReportResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Acknowledged {
		t.Errorf("expected acknowledgement, got %+v", resp)
	}
}

func TestReloadEndpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playbook.md")
	if err := os.WriteFile(path, []byte(playbookFixture), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	store, err := knowledge.OpenStore(path, knowledge.DefaultConfig())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	reporter := feedback.NewReporter("", "", "", slog.Default())
	t.Cleanup(reporter.Close)
	s := NewServer(tools.NewRouter(store, reporter, slog.Default()), store, testAPIKey, slog.Default())

	w := doRequest(t, s, http.MethodPost, "/api/reload?force=true", "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Reloaded bool `json:"reloaded"`
		Degraded bool `json:"degraded"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Reloaded || resp.Degraded {
		t.Errorf("unexpected reload response %+v", resp)
	}
}

func TestFeedbackEndpoint_BadBody(t *testing.T) {
	s := testServer(t)

	w := doRequest(t, s, http.MethodPost, "/api/feedback", "not json", true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
