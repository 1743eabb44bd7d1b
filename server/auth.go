package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/NeurArk/ai-contract-guardian/middleware"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// register creates an account. The password is hashed and never echoed
// back.
func (s *Server) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Email and password are required"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !strings.Contains(email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid email address"})
		return
	}
	if len(req.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Password must be at least 8 characters"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to create account"})
		return
	}

	user, err := s.store.CreateUser(email, string(hash))
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "This email is already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to create account"})
		return
	}

	c.JSON(http.StatusCreated, user)
}

// login exchanges JSON credentials for an access token. Wrong email and
// wrong password are indistinguishable on purpose.
func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Email and password are required"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, passwordHash := s.store.UserByEmail(email)
	if user == nil || bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Incorrect email or password"})
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"detail": "Account disabled"})
		return
	}

	ttl := time.Duration(s.cfg.TokenExpireHours) * time.Hour
	token, _, err := middleware.GenerateToken(user.ID, user.Email, s.cfg.JWTSecret, ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user":         user,
	})
}

// me returns the authenticated user's profile. A valid token for a
// deleted account yields 401 so clients invalidate their session.
func (s *Server) me(c *gin.Context) {
	user := s.store.User(middleware.GetUserID(c))
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "User no longer exists"})
		return
	}
	c.JSON(http.StatusOK, user)
}
