// Package service — AuthService issues and validates the JWT pairs that
// guard the resource endpoints. Token issuance is the boundary contract;
// there is no registration or password reset here.
package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/tucredito/tu-credito-api-go/internal/domain"
	"github.com/tucredito/tu-credito-api-go/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var authTracer = otel.Tracer("service/auth")

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// JWTClaims are the claims carried by both token types.
type JWTClaims struct {
	Username string `json:"username"`
	Type     string `json:"token_type"`
	jwt.RegisteredClaims
}

// AuthService handles credential verification and token lifecycle.
// Both tokens are stateless HMAC JWTs; refresh rotates the pair.
type AuthService struct {
	store      port.UserStore
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(store port.UserStore, jwtSecret string, accessTTL, refreshTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:      store,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     logger,
	}
}

// IssueTokens verifies the credentials and returns a fresh token pair.
func (s *AuthService) IssueTokens(ctx context.Context, req *domain.TokenRequest) (*domain.TokenPair, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.IssueTokens")
	defer span.End()

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, &domain.ErrUnauthorized{Message: "No active account found with the given credentials"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login: failed password attempt", zap.String("username", req.Username))
		return nil, &domain.ErrUnauthorized{Message: "No active account found with the given credentials"}
	}

	pair, err := s.signPair(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	s.logger.Info("tokens issued", zap.String("username", user.Username))
	return pair, nil
}

// Refresh validates a refresh token and rotates the pair.
func (s *AuthService) Refresh(ctx context.Context, req *domain.RefreshRequest) (*domain.TokenPair, error) {
	_, span := authTracer.Start(ctx, "AuthService.Refresh")
	defer span.End()

	claims, err := s.parseToken(req.Refresh)
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "Token is invalid or expired"}
	}
	if claims.Type != tokenTypeRefresh {
		return nil, &domain.ErrUnauthorized{Message: "Token has wrong type"}
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "Token is invalid or expired"}
	}

	return s.signPair(userID, claims.Username)
}

// ValidateAccessToken parses and checks an access token, returning its
// claims. Used by the auth middleware on every protected request.
func (s *AuthService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "Token is invalid or expired"}
	}
	if claims.Type != tokenTypeAccess {
		return nil, &domain.ErrUnauthorized{Message: "Token has wrong type"}
	}
	return claims, nil
}

func (s *AuthService) parseToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) signPair(userID int64, username string) (*domain.TokenPair, error) {
	access, err := s.signToken(userID, username, tokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.signToken(userID, username, tokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &domain.TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *AuthService) signToken(userID int64, username, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Username: username,
		Type:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
