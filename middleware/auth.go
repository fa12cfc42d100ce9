package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/egor/vicai/models"
)

const tokenTTL = 24 * time.Hour

// ErrInvalidCredentials is returned for any failed login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// JWTClaims is the admin token payload.
type JWTClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Auth issues and checks admin tokens for the one configured account.
type Auth struct {
	key   []byte
	admin models.Admin
	now   func() time.Time
}

func NewAuth(secret string, admin models.Admin) *Auth {
	if admin.Role == "" {
		admin.Role = "admin"
	}
	return &Auth{key: []byte(secret), admin: admin, now: time.Now}
}

// Middleware accepts a bearer token, or ?token= for WebSocket upgrades
// where browsers cannot set headers.
func (a *Auth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		claims, err := a.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set("adminEmail", claims.Email)
		c.Set("role", claims.Role)
		c.Next()
	}
}

func (a *Auth) GenerateToken(email, role string) (string, error) {
	now := a.now()
	claims := &JWTClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "vicai",
			Subject:   email,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.key)
}

func (a *Auth) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.key, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Authenticate checks email and password and returns a fresh token.
func (a *Auth) Authenticate(email, password string) (string, error) {
	if a.admin.PasswordHash == "" || !strings.EqualFold(email, a.admin.Email) {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.admin.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return a.GenerateToken(a.admin.Email, a.admin.Role)
}

// Admin returns the account without its hash.
func (a *Auth) Admin() models.Admin {
	admin := a.admin
	admin.PasswordHash = ""
	return admin
}

// HashPassword produces a value for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
