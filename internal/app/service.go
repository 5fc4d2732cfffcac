package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/alswp006/blog-writer/internal/auth"
	"github.com/alswp006/blog-writer/internal/authpw"
	"github.com/alswp006/blog-writer/internal/config"
	"github.com/alswp006/blog-writer/internal/export"
	"github.com/alswp006/blog-writer/internal/logger"
	"github.com/alswp006/blog-writer/internal/search"
	"github.com/alswp006/blog-writer/internal/session"
	"github.com/alswp006/blog-writer/internal/store"
	"github.com/alswp006/blog-writer/internal/training"
)

type dataStore interface {
	GetUserByID(context.Context, string) (*store.User, error)
	GetStyleProfile(context.Context, string) (*store.StyleProfile, error)
	UpsertStyleProfile(context.Context, string, store.StyleProfileUpsert) (store.StyleProfile, error)
	CreateCrawlAttempt(context.Context, string, string) (store.CrawlAttempt, error)
	UpdateCrawlAttempt(context.Context, string, store.CrawlAttemptUpdate) (*store.CrawlAttempt, error)
	ListCrawlAttempts(context.Context, string, int) ([]store.CrawlAttempt, error)
	CreateWritingRequest(context.Context, string, store.WritingRequestInput) (store.WritingRequest, error)
	UpdateWritingRequest(context.Context, string, store.WritingRequestUpdate) (*store.WritingRequest, error)
	GetWritingRequestForUser(context.Context, string, string) (*store.WritingRequest, error)
	ListWritingRequests(context.Context, string, int) ([]store.WritingRequest, error)
	CreateDraftAsLatest(context.Context, string, string, string) (store.GeneratedDraft, error)
	GetLatestDraftForUser(context.Context, string, string) (*store.GeneratedDraft, error)
	ListDrafts(context.Context, string, string) ([]store.GeneratedDraft, error)
	Ping(ctx context.Context) error
}

type accounts interface {
	SignUp(context.Context, authpw.SignUpRequest) (store.User, error)
	SignIn(context.Context, authpw.SignInRequest) (store.User, error)
}

type summarizer interface {
	Summarize(string) string
}

type rateLimiter interface {
	Allow(ctx context.Context, key string) bool
}

type snapshotArchive interface {
	SaveSnapshot(ctx context.Context, userID, attemptID, html string) (string, error)
}

type draftExporter interface {
	Export(context.Context, export.Draft, export.Format) (*export.Result, error)
}

type draftSearch interface {
	Search(context.Context, search.Query) search.Response
	IndexDraft(search.DraftRecord)
}

// Deps are the collaborators of a Service. Limiter, Snapshots, Search and
// Exporter are optional.
type Deps struct {
	Store      dataStore
	Accounts   accounts
	Issuer     *auth.Issuer
	Revoker    session.Revoker
	Fetcher    training.Fetcher
	Summarizer summarizer
	Limiter    rateLimiter
	Snapshots  snapshotArchive
	Search     draftSearch
	Exporter   draftExporter
	Log        *logger.Logger
}

type Service struct {
	cfg        config.Config
	store      dataStore
	accounts   accounts
	issuer     *auth.Issuer
	revoker    session.Revoker
	fetcher    training.Fetcher
	summarizer summarizer
	limiter    rateLimiter
	snapshots  snapshotArchive
	search     draftSearch
	exporter   draftExporter
	log        *logger.Logger
}

func New(cfg config.Config, deps Deps) *Service {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		cfg:        cfg,
		store:      deps.Store,
		accounts:   deps.Accounts,
		issuer:     deps.Issuer,
		revoker:    deps.Revoker,
		fetcher:    deps.Fetcher,
		summarizer: deps.Summarizer,
		limiter:    deps.Limiter,
		snapshots:  deps.Snapshots,
		search:     deps.Search,
		exporter:   deps.Exporter,
		log:        log,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Authenticate resolves a session token to its claims. Any token that is
// missing, malformed, forged, expired or revoked yields UNAUTHORIZED.
func (s *Service) Authenticate(ctx context.Context, token string) (auth.Claims, error) {
	if token == "" {
		return auth.Claims{}, unauthorized()
	}
	claims, err := s.issuer.Resolve(token)
	if err != nil {
		return auth.Claims{}, unauthorized()
	}
	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.JTI)
		if err != nil {
			return auth.Claims{}, internalError("Session lookup failed", err)
		}
		if revoked {
			return auth.Claims{}, unauthorized()
		}
	}
	return claims, nil
}

// IssuedSession is a freshly signed token for user.
type IssuedSession struct {
	User      store.User
	Token     string
	ExpiresAt time.Time
}

func (s *Service) SignUp(ctx context.Context, clientKey string, req authpw.SignUpRequest) (IssuedSession, error) {
	if err := s.allow(ctx, "signup:"+clientKey); err != nil {
		return IssuedSession{}, err
	}
	user, err := s.accounts.SignUp(ctx, req)
	if err != nil {
		return IssuedSession{}, mapAccountError(err, "Signup failed")
	}
	return s.issue(user)
}

func (s *Service) Login(ctx context.Context, clientKey string, req authpw.SignInRequest) (IssuedSession, error) {
	if err := s.allow(ctx, "login:"+clientKey); err != nil {
		return IssuedSession{}, err
	}
	user, err := s.accounts.SignIn(ctx, req)
	if err != nil {
		return IssuedSession{}, mapAccountError(err, "Login failed")
	}
	return s.issue(user)
}

// Logout revokes token until its natural expiry. Tokens that no longer
// resolve need no revocation.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.issuer.Resolve(token)
	if err != nil || s.revoker == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.JTI, claims.ExpiresAt); err != nil {
		return internalError("Logout failed", err)
	}
	return nil
}

func (s *Service) CurrentUser(ctx context.Context, userID string) (store.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return store.User{}, internalError("User lookup failed", err)
	}
	if user == nil {
		// the account behind a still-valid token is gone
		return store.User{}, unauthorized()
	}
	return *user, nil
}

func (s *Service) issue(user store.User) (IssuedSession, error) {
	token, claims, err := s.issuer.Issue(user.ID)
	if err != nil {
		return IssuedSession{}, internalError("Session creation failed", err)
	}
	return IssuedSession{User: user, Token: token, ExpiresAt: claims.ExpiresAt}, nil
}

func (s *Service) allow(ctx context.Context, key string) error {
	if s.limiter == nil || s.limiter.Allow(ctx, key) {
		return nil
	}
	return domainError(http.StatusTooManyRequests, CodeRateLimited, "Too many attempts, try again later", nil)
}

func mapAccountError(err error, fallback string) error {
	var validation *authpw.ValidationError
	switch {
	case errors.As(err, &validation):
		return validationError(validation.Message, nil)
	case errors.Is(err, authpw.ErrEmailInUse):
		return domainError(http.StatusConflict, CodeEmailInUse, "Email already in use", nil)
	case errors.Is(err, authpw.ErrInvalidCredentials):
		return domainError(http.StatusUnauthorized, CodeUnauthorized, "Invalid email or password", nil)
	default:
		return internalError(fallback, err)
	}
}
