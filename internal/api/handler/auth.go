package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"travelbay/backend/internal/models"
	"travelbay/backend/internal/storage"
)

type registerRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Name       string `json:"name" binding:"required"`
	Role       string `json:"role"`
	AgencyName string `json:"agencyName"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a user account. Agency owners get their agency tenant
// created and linked in the same call.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if role != models.RoleCustomer && role != models.RoleAgencyOwner {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be customer or agency-owner"})
		return
	}
	if role == models.RoleAgencyOwner && req.AgencyName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "agencyName is required for agency owners"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := &models.User{
		Email:    req.Email,
		Password: string(hash),
		Name:     req.Name,
		Role:     role,
	}
	if err := h.Storage.CreateUser(user); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	if role == models.RoleAgencyOwner {
		agency := &models.Agency{OwnerID: user.ID, Name: req.AgencyName}
		if err := h.Storage.CreateAgency(agency); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create agency"})
			return
		}
		if err := h.Storage.LinkUserAgency(user.ID, agency.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to link agency"})
			return
		}
		user.AgencyID = &agency.ID
	}

	token, err := h.generateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// Login checks credentials and returns a fresh token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Storage.GetUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.generateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// generateJWT issues an HS256 token carrying the caller identity the rest
// of the API trusts.
func (h *Handler) generateJWT(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(time.Hour * 72).Unix(),
		"iss":     "travelbay-api",
	}
	if user.AgencyID != nil {
		claims["agency_id"] = *user.AgencyID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.Cfg.JWTSecret))
}
