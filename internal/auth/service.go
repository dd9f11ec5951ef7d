package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-trip-planner/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenTTL is how long access tokens stay valid.
const DefaultTokenTTL = 24 * time.Hour

const issuer = "ai-trip-planner"

// Claims represents JWT claims for access tokens.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Service registers users and issues access tokens.
type Service struct {
	repo     *Repository
	secret   []byte
	ttl      time.Duration
	validate *validator.Validate
	log      zerolog.Logger
}

// NewService creates a new auth Service signing tokens with secret.
func NewService(repo *Repository, secret string, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		secret:   []byte(secret),
		ttl:      DefaultTokenTTL,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log.With().Str("component", "auth").Logger(),
	}
}

// SignUp registers a new user.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid sign up request: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", u.ID).Str("username", u.Username).Msg("user registered")
	return &u, nil
}

// SignIn checks the password and issues an access token.
func (s *Service) SignIn(ctx context.Context, req SignInRequest) (*Token, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByLogin(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password: %w", err)
	}

	now := time.Now()
	expires := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Name: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Token{AccessToken: signed, ExpiresAt: expires.UTC().Truncate(time.Second), User: *u}, nil
}

// Verify validates an access token and returns the session it carries.
func (s *Service) Verify(tokenStr string) (session.Session, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil || claims.Subject == "" {
		return session.Session{}, ErrInvalidCredentials
	}
	return session.Session{UserID: claims.Subject, Username: claims.Name}, nil
}
