package identity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"madredder/config"
	"madredder/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 24 * time.Hour

// LocalProvider is the development identity provider: bcrypt-hashed
// credentials held in memory and HS256 session tokens. It implements the
// same IdentityProvider boundary as the Firebase provider, plus SignIn,
// which the managed provider performs client-side and therefore does not
// expose here.
type LocalProvider struct {
	mu       sync.Mutex
	accounts map[string]*localAccount // keyed by email

	secretKey  []byte
	tokenTTL   time.Duration
	bcryptCost int
	minLength  int
}

type localAccount struct {
	userID string
	hash   []byte
}

// NewLocalProvider creates the development identity provider.
func NewLocalProvider(cfg *config.IdentityConfig) *LocalProvider {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	minLength := cfg.MinPasswordLength
	if minLength <= 0 {
		minLength = 6
	}

	return &LocalProvider{
		accounts:   make(map[string]*localAccount),
		secretKey:  []byte(cfg.SecretKey),
		tokenTTL:   ttl,
		bcryptCost: cost,
		minLength:  minLength,
	}
}

// CreateUser provisions a new identity and returns its stable user id.
func (p *LocalProvider) CreateUser(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", service.ErrInvalidIdentifier
	}
	if len(password) < p.minLength {
		return "", service.ErrWeakCredential
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.bcryptCost)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.accounts[email]; exists {
		return "", service.ErrEmailAlreadyInUse
	}

	userID := uuid.NewString()
	p.accounts[email] = &localAccount{userID: userID, hash: hash}

	return userID, nil
}

// SignIn verifies the credential and issues a session token.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	p.mu.Lock()
	account, ok := p.accounts[email]
	p.mu.Unlock()
	if !ok {
		return "", service.ErrInvalidIdentifier
	}

	if err := bcrypt.CompareHashAndPassword(account.hash, []byte(password)); err != nil {
		return "", service.ErrInvalidIdentifier
	}

	return p.issueToken(account.userID)
}

// VerifyToken validates a session token and returns the user id it carries.
func (p *LocalProvider) VerifyToken(ctx context.Context, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, service.ErrInvalidToken
		}

		return p.secretKey, nil
	})
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", service.ErrReauthRequired
		}

		return "", service.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", service.ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", service.ErrInvalidToken
	}

	return sub, nil
}

// DeleteUser removes the identity.
func (p *LocalProvider) DeleteUser(ctx context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for email, account := range p.accounts {
		if account.userID == userID {
			delete(p.accounts, email)

			break
		}
	}

	return nil
}

func (p *LocalProvider) issueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(p.tokenTTL).Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secretKey)
}
