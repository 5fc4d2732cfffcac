package app

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/alswp006/blog-writer/internal/export"
)

func TestExportDraftVersions(t *testing.T) {
	env := newTestService(t, func(d *Deps) { d.Exporter = export.NewService(0) })
	token := env.signIn(t, "user-1")
	env.store.readyProfile("user-1")
	created := createRequest(t, env, token, map[string]any{"topic": "Error wrapping", "titleHint": "Wrap It"})
	id := created.WritingRequest.ID
	env.do(t, http.MethodPost, "/api/writing-requests/"+id+"/drafts", token, nil)

	rr := env.do(t, http.MethodGet, "/api/writing-requests/"+id+"/drafts/export", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Disposition"); got != `attachment; filename="Wrap-It-v2.md"` {
		t.Fatalf("unexpected content disposition %q", got)
	}
	if !strings.HasPrefix(rr.Body.String(), "# Wrap It") {
		t.Fatalf("expected markdown body, got %q", rr.Body.String())
	}

	rr = env.do(t, http.MethodGet, "/api/writing-requests/"+id+"/drafts/export?format=html&version=1", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "<h1>Wrap It</h1>") || !strings.Contains(rr.Body.String(), "version 1") {
		t.Fatalf("expected html for version 1, got %s", rr.Body.String())
	}

	rr = env.do(t, http.MethodGet, "/api/writing-requests/"+id+"/drafts/export?version=9", token, nil)
	assertErrorCode(t, rr, http.StatusNotFound, CodeNotFound)

	rr = env.do(t, http.MethodGet, "/api/writing-requests/"+id+"/drafts/export?format=rtf", token, nil)
	assertErrorCode(t, rr, http.StatusBadRequest, CodeValidation)
}

func TestExportDraftDependencyMissing(t *testing.T) {
	env := newTestService(t, func(d *Deps) { d.Exporter = failingExporter{} })
	token := env.signIn(t, "user-1")
	env.store.readyProfile("user-1")
	created := createRequest(t, env, token, map[string]any{"topic": "PDFs"})

	rr := env.do(t, http.MethodGet, "/api/writing-requests/"+created.WritingRequest.ID+"/drafts/export?format=pdf", token, nil)
	assertErrorCode(t, rr, http.StatusNotImplemented, CodeExportUnavailable)
}

func TestExportDraftOtherUserNotFound(t *testing.T) {
	env := newTestService(t, func(d *Deps) { d.Exporter = export.NewService(0) })
	owner := env.signIn(t, "user-1")
	intruder := env.signIn(t, "user-2")
	env.store.readyProfile("user-1")
	created := createRequest(t, env, owner, map[string]any{"topic": "Secrets"})

	rr := env.do(t, http.MethodGet, "/api/writing-requests/"+created.WritingRequest.ID+"/drafts/export", intruder, nil)
	assertErrorCode(t, rr, http.StatusNotFound, CodeNotFound)
}

type failingExporter struct{}

func (failingExporter) Export(context.Context, export.Draft, export.Format) (*export.Result, error) {
	return nil, export.ErrPDFDependencyMissing
}
