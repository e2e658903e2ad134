package services

import (
	"context"
	"crypto/subtle"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/simplylizz/wannatalk/internal/common"
	"github.com/simplylizz/wannatalk/internal/logging"
	"github.com/simplylizz/wannatalk/internal/server/auth"
	"github.com/simplylizz/wannatalk/internal/server/config"
)

// Admin authenticates the operator account and issues API tokens. There is
// a single operator, configured by login and bcrypt password hash; when no
// hash is configured every login fails.
type Admin struct {
	login         string
	passwordHash  string
	secretKey     []byte
	tokenValidity time.Duration
	logger        logging.Logger
}

func NewAdmin(cfg *config.Config, logger logging.Logger) *Admin {
	return &Admin{
		login:         cfg.AdminLogin,
		passwordHash:  cfg.AdminPasswordHash,
		secretKey:     []byte(cfg.SecretKey),
		tokenValidity: cfg.AccessTokenValidityDuration,
		logger:        logger,
	}
}

// Login checks the credentials and returns a signed access token.
func (s *Admin) Login(ctx context.Context, login, password string) (string, error) {
	if s.passwordHash == "" {
		s.logger.Warn(ctx, "operator login rejected: no password hash configured")
		return "", common.ErrorUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(login), []byte(s.login)) != 1 {
		return "", common.ErrorUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", common.ErrorUnauthorized
	}

	return auth.GenerateToken(login, s.secretKey, s.tokenValidity)
}

// VerifyToken validates an access token and returns the operator login it
// was issued for.
func (s *Admin) VerifyToken(token string) (string, error) {
	return auth.GetLoginFromToken(token, s.secretKey)
}
