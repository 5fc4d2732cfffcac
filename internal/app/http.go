package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alswp006/blog-writer/internal/auth"
	"github.com/alswp006/blog-writer/internal/logger"
	"github.com/alswp006/blog-writer/internal/util"
)

const maxBodyBytes = 1 << 20

// protectedPagePrefixes need a session for browser navigation.
var protectedPagePrefixes = []string{"/dashboard", "/style"}

// authPages are pointless for a signed-in user.
var authPages = map[string]bool{"/login": true, "/signup": true}

type HTTPServer struct {
	service    *Service
	corsOrigin string
	log        *logger.Logger
	pages      http.Handler
}

func NewHTTPServer(service *Service, corsOrigin string, log *logger.Logger) *HTTPServer {
	if log == nil {
		log = logger.Nop()
	}
	return &HTTPServer{service: service, corsOrigin: corsOrigin, log: log}
}

// WithPages serves non-API paths from pages once the page gate has passed.
func (s *HTTPServer) WithPages(pages http.Handler) *HTTPServer {
	s.pages = pages
	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if !strings.HasPrefix(r.URL.Path, "/api/") {
		s.handlePage(w, r)
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		s.handleReady(w, r)
		return
	}

	if strings.HasPrefix(r.URL.Path, "/api/auth/") {
		s.handleAuth(w, r)
		return
	}

	claims, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	userID := claims.UserID
	parts := splitPath(strings.TrimPrefix(r.URL.Path, "/api"))

	switch {
	case len(parts) >= 1 && parts[0] == "style-profile":
		s.handleStyleProfile(w, r, userID, parts[1:])
		return
	case len(parts) >= 1 && parts[0] == "writing-requests":
		s.handleWritingRequests(w, r, userID, parts[1:])
		return
	case len(parts) == 2 && parts[0] == "drafts" && parts[1] == "search" && r.Method == http.MethodGet:
		query := r.URL.Query()
		resp, err := s.service.SearchDrafts(r.Context(), userID, query.Get("q"), queryInt(query, "limit"), queryInt(query, "offset"))
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	writeError(w, http.StatusNotFound, CodeNotFound, "Not found", nil)
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	statusCode := http.StatusOK
	checks := map[string]any{
		"database": map[string]any{"status": "ok"},
	}

	if err := s.service.Ping(ctx); err != nil {
		s.log.Warn("readiness check failed", "request_id", requestIDFrom(r.Context()), "error", err)
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
		checks["database"] = map[string]any{"status": "error"}
	}

	writeJSON(w, statusCode, map[string]any{
		"ok":     status == "ready",
		"status": status,
		"checks": checks,
	})
}

// handlePage gates browser navigation. Signed-out visitors of protected pages
// go to the login page and signed-in visitors of auth pages to the dashboard.
func (s *HTTPServer) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		_, authErr := s.service.Authenticate(r.Context(), sessionToken(r))
		signedIn := authErr == nil

		if !signedIn && isProtectedPage(r.URL.Path) {
			target := "/login?redirect=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		if signedIn && authPages[r.URL.Path] {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
	}
	if s.pages != nil {
		s.pages.ServeHTTP(w, r)
		return
	}
	writeError(w, http.StatusNotFound, CodeNotFound, "Not found", nil)
}

func isProtectedPage(path string) bool {
	for _, prefix := range protectedPagePrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func (s *HTTPServer) handleStyleProfile(w http.ResponseWriter, r *http.Request, userID string, parts []string) {
	ctx := r.Context()
	switch {
	case len(parts) == 0 && r.Method == http.MethodGet:
		profile, err := s.service.GetStyleProfile(ctx, userID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"styleProfile": profile})

	case len(parts) == 1 && parts[0] == "train-paste" && r.Method == http.MethodPost:
		var body struct {
			Text string `json:"text"`
		}
		if !s.decode(w, r, &body) {
			return
		}
		profile, err := s.service.TrainFromPaste(ctx, userID, body.Text)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"styleProfile": profile})

	case len(parts) == 1 && parts[0] == "train-url" && r.Method == http.MethodPost:
		var body struct {
			URL string `json:"url"`
		}
		if !s.decode(w, r, &body) {
			return
		}
		result, err := s.service.TrainFromURL(ctx, userID, body.URL)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)

	case len(parts) == 1 && parts[0] == "crawl-attempts" && r.Method == http.MethodGet:
		attempts, err := s.service.ListCrawlAttempts(ctx, userID, queryInt(r.URL.Query(), "limit"))
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"crawlAttempts": attempts})

	default:
		writeError(w, http.StatusNotFound, CodeNotFound, "Not found", nil)
	}
}

func (s *HTTPServer) handleWritingRequests(w http.ResponseWriter, r *http.Request, userID string, parts []string) {
	ctx := r.Context()
	switch {
	case len(parts) == 0 && r.Method == http.MethodPost:
		var body CreateWritingRequestInput
		if !s.decode(w, r, &body) {
			return
		}
		result, err := s.service.CreateWritingRequest(ctx, userID, body)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)

	case len(parts) == 0 && r.Method == http.MethodGet:
		items, err := s.service.ListWritingRequests(ctx, userID, queryInt(r.URL.Query(), "limit"))
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"writingRequests": items})

	case len(parts) == 1 && r.Method == http.MethodGet:
		result, err := s.service.GetWritingRequest(ctx, userID, parts[0])
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)

	case len(parts) == 2 && parts[1] == "drafts" && r.Method == http.MethodGet:
		drafts, err := s.service.ListDrafts(ctx, userID, parts[0])
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"drafts": drafts})

	case len(parts) == 3 && parts[1] == "drafts" && parts[2] == "export" && r.Method == http.MethodGet:
		query := r.URL.Query()
		result, err := s.service.ExportDraft(ctx, userID, parts[0], queryInt(query, "version"), query.Get("format"))
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", result.MimeType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Data)

	case len(parts) == 2 && parts[1] == "drafts" && r.Method == http.MethodPost:
		result, err := s.service.RegenerateDraft(ctx, userID, parts[0])
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)

	default:
		writeError(w, http.StatusNotFound, CodeNotFound, "Not found", nil)
	}
}

func (s *HTTPServer) requireSession(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, err := s.service.Authenticate(r.Context(), sessionToken(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return auth.Claims{}, false
	}
	return claims, true
}

func (s *HTTPServer) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := decodeBody(w, r, target); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return false
	}
	return true
}

// writeServiceError renders err and logs the cause of internal failures with
// the request id.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message, details := mapError(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			"request_id", requestIDFrom(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeError(w, status, code, message, details)
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = util.NewID("req")
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		s.log.Info("request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", writer.status,
			"duration_ms", time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	if corsOrigin != "*" {
		header.Set("Access-Control-Allow-Credentials", "true")
	}
	header.Set("Cache-Control", "no-store")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError renders {"error":{"code","message","details"?}}.
func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	body := map[string]any{
		"code":    code,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	writeJSON(w, status, map[string]any{"error": body})
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errors.New("Invalid JSON body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("Request body exceeds %d bytes", maxBodyBytes)
		}
		return errors.New("Invalid JSON body")
	}
	return nil
}

// sessionToken reads the session cookie, then an Authorization bearer token.
func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(auth.CookieName); err == nil && strings.TrimSpace(cookie.Value) != "" {
		return strings.TrimSpace(cookie.Value)
	}
	return bearerToken(r)
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func queryInt(values url.Values, key string) int {
	parsed, err := strconv.Atoi(values.Get(key))
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) {
		return http.StatusUnauthorized, CodeUnauthorized, "Unauthorized", nil
	}
	return http.StatusInternalServerError, CodeInternal, "Internal server error", nil
}
