package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/models"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/repositories"
	"github.com/rahulbrandimpetus/wheelspin-backend/pkg/jwt"
	"github.com/rahulbrandimpetus/wheelspin-backend/pkg/logger"
)

const adminSubject = "admin"

// AdminAuthenticator checks admin credentials. A credential is either the shared admin
// key or a session token issued for it.
type AdminAuthenticator struct {
	key     string
	keyHash []byte
	tokens  *jwt.AdminTokenService
}

// NewAdminAuthenticator creates an AdminAuthenticator. When keyHash is set the key is
// compared against the bcrypt hash and key is ignored. tokens may be nil.
func NewAdminAuthenticator(key, keyHash string, tokens *jwt.AdminTokenService) *AdminAuthenticator {
	a := &AdminAuthenticator{key: key, tokens: tokens}
	if keyHash != "" {
		a.keyHash = []byte(keyHash)
	}
	return a
}

// Authenticate accepts the admin key or a valid admin token
func (a *AdminAuthenticator) Authenticate(credential string) error {
	if credential == "" {
		return ErrUnauthorized
	}
	if a.tokens != nil && looksLikeJWT(credential) {
		if _, err := a.tokens.Validate(credential); err != nil {
			return fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return nil
	}
	return a.CheckKey(credential)
}

// CheckKey accepts only the admin key itself
func (a *AdminAuthenticator) CheckKey(key string) error {
	if key == "" {
		return ErrUnauthorized
	}
	if a.keyHash != nil {
		if err := bcrypt.CompareHashAndPassword(a.keyHash, []byte(key)); err != nil {
			return ErrUnauthorized
		}
		return nil
	}
	if a.key == "" || subtle.ConstantTimeCompare([]byte(a.key), []byte(key)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

func looksLikeJWT(s string) bool {
	return strings.Count(s, ".") == 2
}

// Compile-time check to ensure AdminServiceImpl implements AdminService
var _ AdminService = (*AdminServiceImpl)(nil)

// AdminServiceImpl handles operator-facing catalog operations
type AdminServiceImpl struct {
	auth    *AdminAuthenticator
	catalog repositories.PrizeCatalogRepository
	mirror  StatsMirror
	tokens  *jwt.AdminTokenService
	now     func() time.Time
}

// NewAdminService creates a new AdminServiceImpl
func NewAdminService(
	auth *AdminAuthenticator,
	catalog repositories.PrizeCatalogRepository,
	mirror StatsMirror,
	tokens *jwt.AdminTokenService,
) *AdminServiceImpl {
	if mirror == nil {
		mirror = NoopMirror{}
	}
	return &AdminServiceImpl{
		auth:    auth,
		catalog: catalog,
		mirror:  mirror,
		tokens:  tokens,
		now:     time.Now,
	}
}

// WithClock replaces the clock used for reset timestamps
func (s *AdminServiceImpl) WithClock(now func() time.Time) *AdminServiceImpl {
	s.now = now
	return s
}

// ResetInventory restores every capped prize to its cap. Distribution totals are kept.
func (s *AdminServiceImpl) ResetInventory(ctx context.Context, adminKey string) (*models.ResetResult, error) {
	if err := s.auth.Authenticate(adminKey); err != nil {
		logger.WarnCtx(ctx, "Rejected inventory reset", zap.Error(err))
		return nil, err
	}

	at := s.now().UTC()
	if err := s.catalog.ResetAll(ctx, at); err != nil {
		return nil, upstreamError(ctx, "resetAll", err)
	}
	logger.InfoCtx(ctx, "Prize inventory reset")

	// The mirror is refreshed from a new read; a failed read only leaves it stale.
	if prizes, err := s.catalog.LoadAll(ctx); err == nil {
		publishStats(ctx, s.mirror, "reset", buildSnapshot(prizes, at))
	} else {
		logger.WarnCtx(ctx, "Could not read catalog after reset; stats mirror not refreshed", zap.Error(err))
	}

	return &models.ResetResult{Success: true}, nil
}

// GetStats returns the current counters of every prize in catalog order
func (s *AdminServiceImpl) GetStats(ctx context.Context, adminKey string) ([]models.PrizeStat, error) {
	if err := s.auth.Authenticate(adminKey); err != nil {
		logger.WarnCtx(ctx, "Rejected stats request", zap.Error(err))
		return nil, err
	}

	prizes, err := loadCatalog(ctx, s.catalog)
	if err != nil {
		return nil, err
	}
	return buildSnapshot(prizes, s.now().UTC()).Prizes, nil
}

// IssueToken exchanges the admin key for a session token
func (s *AdminServiceImpl) IssueToken(ctx context.Context, adminKey string) (*models.AdminTokenResponse, error) {
	if err := s.auth.CheckKey(adminKey); err != nil {
		logger.WarnCtx(ctx, "Rejected admin token request")
		return nil, err
	}
	if s.tokens == nil {
		return nil, fmt.Errorf("%w: admin tokens are not configured", ErrConfiguration)
	}

	token, err := s.tokens.Issue(adminSubject)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return &models.AdminTokenResponse{
		Token:     token,
		ExpiresIn: int(s.tokens.TTL().Seconds()),
	}, nil
}
