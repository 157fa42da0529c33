package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/AnTengye/clausewise/config"
	"github.com/AnTengye/clausewise/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:        "test-secret-key",
		TokenExpireHours: 24,
	}
}

func TestGenerateToken(t *testing.T) {
	cfg := testAuthConfig()

	token, expiresAt, err := GenerateToken("testuser", "testtenant", cfg)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if token == "" {
		t.Error("Expected non-empty token")
	}

	expectedExpiry := time.Now().Add(24 * time.Hour)
	if expiresAt.Before(expectedExpiry.Add(-time.Minute)) || expiresAt.After(expectedExpiry.Add(time.Minute)) {
		t.Errorf("Expiry time %v is not within expected range of %v", expiresAt, expectedExpiry)
	}

	claims, err := ParseToken(token, cfg)
	if err != nil {
		t.Fatalf("Failed to parse token: %v", err)
	}
	if claims.Username != "testuser" || claims.Tenant != "testtenant" {
		t.Errorf("Unexpected claims: %+v", claims)
	}
	if claims.Issuer != tokenIssuer {
		t.Errorf("Expected issuer %s, got %s", tokenIssuer, claims.Issuer)
	}
}

func TestParseTokenRejects(t *testing.T) {
	cfg := testAuthConfig()

	expired := Claims{
		Username: "testuser",
		Tenant:   "testtenant",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	expiredToken, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, expired).SignedString([]byte(cfg.JWTSecret))

	wrongIssuer := expired
	wrongIssuer.Issuer = "someone-else"
	wrongIssuer.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	wrongIssuerToken, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, wrongIssuer).SignedString([]byte(cfg.JWTSecret))

	noTenant := wrongIssuer
	noTenant.Issuer = tokenIssuer
	noTenant.Tenant = ""
	noTenantToken, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, noTenant).SignedString([]byte(cfg.JWTSecret))

	otherSecret, _, _ := GenerateToken("testuser", "testtenant", &config.AuthConfig{JWTSecret: "other", TokenExpireHours: 1})

	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, noTenant).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := map[string]string{
		"expired":      expiredToken,
		"wrong issuer": wrongIssuerToken,
		"no tenant":    noTenantToken,
		"wrong secret": otherSecret,
		"alg none":     unsigned,
		"garbage":      "not.a.token",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseToken(token, cfg); err == nil {
				t.Error("Expected token to be rejected")
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testAuthConfig()

	token, _, err := GenerateToken("testuser", "testtenant", cfg)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"invalid format", token, http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"invalid token", "Bearer invalid.token.here", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(AuthMiddleware(cfg))
			router.GET("/test", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{
					"username": GetUsername(c),
					"tenant":   GetTenant(c),
				})
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestAuthMiddlewarePropagatesIdentity(t *testing.T) {
	cfg := testAuthConfig()
	token, _, _ := GenerateToken("alice", "acme", cfg)

	var username, tenant string
	var ctxTenant any
	router := gin.New()
	router.Use(AuthMiddleware(cfg))
	router.GET("/test", func(c *gin.Context) {
		username = GetUsername(c)
		tenant = GetTenant(c)
		ctxTenant = c.Request.Context().Value(logger.TenantKey)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(httptest.NewRecorder(), req)

	if username != "alice" || tenant != "acme" {
		t.Errorf("Expected alice/acme, got %s/%s", username, tenant)
	}
	if ctxTenant != "acme" {
		t.Errorf("Expected tenant in request context, got %v", ctxTenant)
	}
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Expected bcrypt hash, got %s", hash)
	}

	if !CheckPassword(hash, "s3cret") {
		t.Error("Expected hashed password to match")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("Expected wrong password to fail against hash")
	}
	if !CheckPassword("plain", "plain") {
		t.Error("Expected plain password to match")
	}
	if CheckPassword("plain", "other") {
		t.Error("Expected plain mismatch to fail")
	}
	if CheckPassword("", "") {
		t.Error("Expected empty stored password to never match")
	}
}
