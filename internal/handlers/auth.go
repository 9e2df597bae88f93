package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/ugandalearn/learn-service/internal/config"
	"github.com/ugandalearn/learn-service/internal/models"
	"github.com/ugandalearn/learn-service/internal/repositories"
	"github.com/ugandalearn/learn-service/internal/services"
	"github.com/ugandalearn/learn-service/internal/utils"
)

const (
	contextKeyUserID  = "user_id"
	contextKeyAccount = "account"
)

var ErrInvalidToken = errors.New("invalid token")

// Authenticator turns a bearer token into the account it identifies
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Account, error)
}

// NewAuthenticator picks the implementation named by cfg.Auth.Provider
func NewAuthenticator(cfg *config.Config) (Authenticator, error) {
	switch cfg.Auth.Provider {
	case config.AuthProviderCasdoor:
		return NewCasdoorAuthenticator(cfg.Casdoor), nil
	case config.AuthProviderJWT:
		if cfg.Auth.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required for auth provider %q", cfg.Auth.Provider)
		}
		return NewJWTAuthenticator(cfg.Auth.JWTSecret), nil
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.Auth.Provider)
	}
}

// CasdoorAuthenticator verifies tokens issued by Casdoor against the
// application certificate
type CasdoorAuthenticator struct {
	client *casdoorsdk.Client
}

func NewCasdoorAuthenticator(cfg config.CasdoorConfig) *CasdoorAuthenticator {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)
	return &CasdoorAuthenticator{client: client}
}

func (a *CasdoorAuthenticator) Authenticate(_ context.Context, token string) (*models.Account, error) {
	claims, err := a.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Id == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}

	account := &models.Account{
		ID:    claims.Id,
		Email: claims.User.Email,
	}
	if name := strings.TrimSpace(claims.User.DisplayName); name != "" {
		account.Name = &name
	}
	return account, nil
}

// sessionClaims is the HS256 token body: sub is the user id
type sessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuthenticator verifies HS256 tokens signed with a shared secret
type JWTAuthenticator struct {
	secret []byte
}

func NewJWTAuthenticator(secret string) *JWTAuthenticator {
	return &JWTAuthenticator{secret: []byte(secret)}
}

func (a *JWTAuthenticator) Authenticate(_ context.Context, token string) (*models.Account, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	account := &models.Account{
		ID:    claims.Subject,
		Email: claims.Email,
	}
	if name := strings.TrimSpace(claims.Name); name != "" {
		account.Name = &name
	}
	return account, nil
}

// SignJWT issues an HS256 session token. Used by tests and local tooling.
func SignJWT(secret, userID, email, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware rejects requests without a valid session. Authenticated
// accounts are upserted so profile joins always find their auth row.
func AuthMiddleware(authenticator Authenticator, accounts repositories.AccountRepository, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := utils.FromContext(c.Request.Context(), logger)

		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c)
			return
		}

		account, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			log.Debug("Authentication failed", "error", err)
			abortUnauthorized(c)
			return
		}

		account.LastSeenAt = time.Now().UTC()
		if err := accounts.Upsert(c.Request.Context(), account); err != nil {
			log.Error("Failed to record account", "error", err, "user_id", account.ID)
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: services.MsgInternalServerError})
			return
		}

		setIdentity(c, account)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches identity when a valid token is present and
// never rejects the request
func OptionalAuthMiddleware(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if account, err := authenticator.Authenticate(c.Request.Context(), token); err == nil {
				setIdentity(c, account)
			}
		}
		c.Next()
	}
}

func setIdentity(c *gin.Context, account *models.Account) {
	c.Set(contextKeyUserID, account.ID)
	c.Set(contextKeyAccount, account)
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: services.MsgUnauthorized})
}

// GetUserIDFromContext extracts user ID from Gin context
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get(contextKeyUserID)
	if !exists {
		return "", fmt.Errorf("user ID not found in context")
	}

	id, ok := userID.(string)
	if !ok || id == "" {
		return "", fmt.Errorf("invalid user ID type in context")
	}
	return id, nil
}

// GetAccountFromContext extracts the authenticated account from Gin context
func GetAccountFromContext(c *gin.Context) (*models.Account, error) {
	value, exists := c.Get(contextKeyAccount)
	if !exists {
		return nil, fmt.Errorf("account not found in context")
	}

	account, ok := value.(*models.Account)
	if !ok {
		return nil, fmt.Errorf("invalid account type in context")
	}
	return account, nil
}
