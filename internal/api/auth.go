package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dietpal/backend/internal/middleware"
	"github.com/dietpal/backend/internal/service"
	"github.com/dietpal/backend/internal/userstore"
)

// AuthHandler serves registration, login and the per-account records.
type AuthHandler struct {
	auth  *service.AuthService
	users *userstore.Store
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(auth *service.AuthService, users *userstore.Store) *AuthHandler {
	return &AuthHandler{auth: auth, users: users}
}

// RegisterRoutes registers the auth routes on the group.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(h.auth))
		{
			protected.GET("/profiles", h.ListProfiles)
			protected.POST("/profiles", h.SaveProfile)
			protected.GET("/emergency-contact", h.GetEmergencyContact)
			protected.POST("/emergency-contact", h.SaveEmergencyContact)
		}
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

func toUserResponse(user *userstore.User) userResponse {
	return userResponse{ID: user.ID, Email: user.Email, Username: user.Username, Name: user.Name}
}

// Register creates an account and returns a signed token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}

	token, user, err := h.auth.Register(req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailRegistered):
			c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
		case errors.Is(err, service.ErrUsernameExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": "username already exists"})
		default:
			log.Printf("Registration failed for %s: %v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": toUserResponse(user)})
}

// Login verifies credentials and returns a signed token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}

	token, user, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
			return
		}
		log.Printf("Login failed for %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": toUserResponse(user)})
}

// currentUser resolves the account behind the validated token.
func (h *AuthHandler) currentUser(c *gin.Context) (*userstore.User, bool) {
	email := c.GetString("email")
	user, err := h.auth.UserByEmail(email)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return nil, false
	}
	return user, true
}

// ListProfiles returns every saved health profile for the account.
func (h *AuthHandler) ListProfiles(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	profiles, err := h.users.Profiles(user.Username)
	if err != nil {
		log.Printf("Failed to list profiles for %s: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profiles"})
		return
	}
	if profiles == nil {
		profiles = []userstore.ProfileRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// SaveProfile stores a new profile snapshot and returns the updated list.
func (h *AuthHandler) SaveProfile(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var profile json.RawMessage
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile"})
		return
	}

	if _, err := h.users.SaveProfile(user.Username, profile); err != nil {
		log.Printf("Failed to save profile for %s: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save profile"})
		return
	}

	profiles, err := h.users.Profiles(user.Username)
	if err != nil {
		log.Printf("Failed to list profiles for %s: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profiles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// GetEmergencyContact returns the stored contact, empty when none is set.
func (h *AuthHandler) GetEmergencyContact(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	contact, err := h.users.EmergencyContact(user.Username)
	if err != nil {
		log.Printf("Failed to read emergency contact for %s: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load emergency contact"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"emergencyContact": contact})
}

// SaveEmergencyContact validates and replaces the stored contact.
func (h *AuthHandler) SaveEmergencyContact(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var contact userstore.EmergencyContact
	if err := c.ShouldBindJSON(&contact); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid emergency contact"})
		return
	}
	if contact.Name == "" || contact.Relationship == "" || contact.Phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, relationship, and phone are required"})
		return
	}

	if err := h.users.SaveEmergencyContact(user.Username, contact); err != nil {
		log.Printf("Failed to save emergency contact for %s: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save emergency contact"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"emergencyContact": contact})
}
