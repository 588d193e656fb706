package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/xavierca1/lead-pipeline/internal/entity"
	"github.com/xavierca1/lead-pipeline/internal/usecase"
	"go.uber.org/zap"
)

type contextKey string

const profileKey contextKey = "profile"

// ProfileResolver is satisfied by *usecase.ResolveProfileUseCase.
type ProfileResolver interface {
	Execute(ctx context.Context, session usecase.Session) (*entity.Profile, error)
}

// SessionClaims is what the auth provider signs into the bearer token.
type SessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Session struct {
	secret   []byte
	resolver ProfileResolver
	logger   *zap.Logger
}

func NewSession(secret string, resolver ProfileResolver, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{secret: []byte(secret), resolver: resolver, logger: logger}
}

// Handler verifies the bearer token and stores the acting profile in the
// request context. Requests without a valid session never reach a handler.
func (s *Session) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		session, err := s.Parse(raw)
		if err != nil {
			s.logger.Debug("rejected session token", zap.Error(err))
			writeAuthError(w, http.StatusUnauthorized, "unauthorized", "invalid session")
			return
		}

		profile, err := s.resolver.Execute(r.Context(), session)
		if err != nil {
			s.logger.Error("profile resolution failed", zap.String("user_id", session.UserID), zap.Error(err))
			writeAuthError(w, http.StatusBadGateway, "store_unavailable", "could not load profile")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), *profile)))
	})
}

// Parse verifies an HS256 token and returns the session it carries.
func (s *Session) Parse(raw string) (usecase.Session, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return usecase.Session{}, err
	}
	if !token.Valid {
		return usecase.Session{}, errors.New("token is not valid")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return usecase.Session{}, fmt.Errorf("token has no subject")
	}
	return usecase.Session{UserID: sub, Email: claims.Email}, nil
}

func WithProfile(ctx context.Context, p entity.Profile) context.Context {
	return context.WithValue(ctx, profileKey, p)
}

func ProfileFromContext(ctx context.Context) (entity.Profile, bool) {
	p, ok := ctx.Value(profileKey).(entity.Profile)
	return p, ok
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}
