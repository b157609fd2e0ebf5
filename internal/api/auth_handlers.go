package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/example/retail-shop/internal/api/middleware"
	"github.com/example/retail-shop/internal/auth"
	"github.com/example/retail-shop/internal/domain/customer"
	"go.uber.org/zap"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	customers  CustomerService
	jwtService *auth.JWTService
	logger     *zap.Logger
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(customers CustomerService, jwtService *auth.JWTService, logger *zap.Logger) *AuthHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandlers{
		customers:  customers,
		jwtService: jwtService,
		logger:     logger,
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by register, login and refresh. Tokens are also
// set as HttpOnly cookies for browser clients.
type TokenResponse struct {
	Token        string             `json:"token"`
	RefreshToken string             `json:"refresh_token"`
	Type         string             `json:"type"`
	ExpiresAt    time.Time          `json:"expires_at"`
	Customer     *customer.Customer `json:"customer"`
}

// Register handles customer registration
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req customer.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	c, err := h.customers.Register(r.Context(), req)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	h.respondWithTokens(w, r, http.StatusCreated, c)
}

// Login handles customer login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	c, err := h.customers.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	h.respondWithTokens(w, r, http.StatusOK, c)
}

// Refresh exchanges a refresh token, from the body or the refresh_token
// cookie, for a new token pair. Role and email are re-read from the store.
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondJSONError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}
	if req.RefreshToken == "" {
		if cookie, err := r.Cookie("refresh_token"); err == nil {
			req.RefreshToken = cookie.Value
		}
	}
	if req.RefreshToken == "" {
		respondJSONError(w, "No refresh token", http.StatusUnauthorized)
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		h.clearAuthCookies(w)
		respondJSONError(w, "Invalid refresh token", http.StatusUnauthorized)
		return
	}

	c, err := h.customers.GetByID(r.Context(), claims.CustomerID)
	if err != nil {
		if errors.Is(err, customer.ErrCustomerNotFound) {
			h.clearAuthCookies(w)
			respondJSONError(w, "Customer not found", http.StatusUnauthorized)
			return
		}
		respondDomainError(w, r, h.logger, err)
		return
	}

	h.respondWithTokens(w, r, http.StatusOK, c)
}

// Logout clears the auth cookies. Bearer tokens expire on their own.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearAuthCookies(w)
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Logout successful",
	})
}

// Me returns the current authenticated customer
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if !ok {
		respondJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	c, err := h.customers.GetByID(r.Context(), claims.CustomerID)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// Helper methods

func (h *AuthHandlers) respondWithTokens(w http.ResponseWriter, r *http.Request, status int, c *customer.Customer) {
	accessToken, accessExpiry, err := h.jwtService.GenerateAccessToken(c.ID, c.Email, c.Role)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}
	refreshToken, refreshExpiry, err := h.jwtService.GenerateRefreshToken(c.ID, c.Email)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		Expires:  accessExpiry,
		MaxAge:   int(h.jwtService.GetAccessTokenExpiry().Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/api/auth/refresh",
		Expires:  refreshExpiry,
		MaxAge:   int(h.jwtService.GetRefreshTokenExpiry().Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	respondJSON(w, status, TokenResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
		Type:         "Bearer",
		ExpiresAt:    accessExpiry,
		Customer:     c,
	})
}

func (h *AuthHandlers) clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/api/auth/refresh",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
