package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pokerhub/internal/auth"
	"pokerhub/internal/db"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type guestRequest struct {
	Name string `json:"name" binding:"required,min=1,max=32"`
}

type authResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Guest  bool   `json:"guest,omitempty"`
}

func (s *Server) handleRegister(c *gin.Context) {
	if s.database == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "accounts are disabled, use guest login"})
		return
	}
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	user := dbUser(req.Username, hash)
	if err := s.database.Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
		return
	}

	id := auth.Identity{UserID: user.ID, Name: user.Username}
	token, err := s.auth.GenerateToken(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusCreated, authResponse{Token: token, UserID: user.ID, Name: user.Username})
}

func (s *Server) handleLogin(c *gin.Context) {
	if s.database == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "accounts are disabled, use guest login"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := s.findUser(req.Username)
	if err != nil || !s.auth.CheckPassword(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := s.auth.GenerateToken(auth.Identity{UserID: user.ID, Name: user.Username})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, authResponse{Token: token, UserID: user.ID, Name: user.Username})
}

// handleGuest issues a throwaway identity so players can sit down without
// an account.
func (s *Server) handleGuest(c *gin.Context) {
	var req guestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	id := auth.Identity{UserID: auth.NewGuestID(), Name: req.Name, Guest: true}
	token, err := s.auth.GenerateToken(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, authResponse{Token: token, UserID: id.UserID, Name: id.Name, Guest: true})
}

func (s *Server) handleMe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"userId": c.GetString("user_id"),
		"name":   c.GetString("user_name"),
		"guest":  c.GetBool("user_guest"),
	})
}

func dbUser(username, hash string) db.User {
	return db.User{ID: uuid.New().String(), Username: username, PasswordHash: hash}
}

func (s *Server) findUser(username string) (*db.User, error) {
	var user db.User
	if err := s.database.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, err := s.auth.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("user_id", id.UserID)
		c.Set("user_name", id.Name)
		c.Set("user_guest", id.Guest)
		c.Next()
	}
}
