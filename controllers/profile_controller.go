package controllers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/villagefriends/network_backend/models"
	"github.com/villagefriends/network_backend/repository"
	"github.com/villagefriends/network_backend/utils"
)

type ProfileController struct {
	profiles  *repository.ProfileRepository
	uploadDir string
}

func NewProfileController(profiles *repository.ProfileRepository, uploadDir string) *ProfileController {
	return &ProfileController{profiles: profiles, uploadDir: uploadDir}
}

type ProfileInput struct {
	FamilyName   string       `json:"family_name" binding:"required"`
	Bio          string       `json:"bio"`
	City         string       `json:"city"`
	State        string       `json:"state"`
	ZipCode      string       `json:"zip_code"`
	Latitude     *float64     `json:"latitude"`
	Longitude    *float64     `json:"longitude"`
	Interests    []string     `json:"interests"`
	Kids         []models.Kid `json:"kids"`
	SearchRadius int          `json:"search_radius"`
}

type PhotoInput struct {
	// Data URL or raw base64 of the image
	Image string `json:"image" binding:"required"`
}

// CreateProfile godoc
// @Summary Create the authenticated user's family profile
// @Description A user may own exactly one family profile
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body ProfileInput true "Profile"
// @Success 201 {object} map[string]interface{} "Created profile"
// @Failure 400 {object} map[string]string "Invalid input or profile exists"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /api/profiles [post]
func (ctrl *ProfileController) CreateProfile(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var input ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	radius := input.SearchRadius
	if radius <= 0 {
		radius = 25
	}

	profile := models.FamilyProfile{
		FamilyID:     utils.NewID("family"),
		UserID:       userID,
		FamilyName:   input.FamilyName,
		Bio:          input.Bio,
		City:         input.City,
		State:        input.State,
		ZipCode:      input.ZipCode,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		Interests:    input.Interests,
		Kids:         input.Kids,
		SearchRadius: radius,
	}

	if err := ctrl.profiles.Create(c.Request.Context(), &profile); err != nil {
		if errors.Is(err, repository.ErrProfileExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Family profile already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create profile"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Profile created successfully",
		"profile": profile,
	})
}

// GetMyProfile returns the authenticated user's family profile.
func (ctrl *ProfileController) GetMyProfile(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	profile, err := ctrl.profiles.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// UpdateProfile replaces the authenticated user's family profile fields.
func (ctrl *ProfileController) UpdateProfile(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	profile, err := ctrl.profiles.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	var input ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile.FamilyName = input.FamilyName
	profile.Bio = input.Bio
	profile.City = input.City
	profile.State = input.State
	profile.ZipCode = input.ZipCode
	profile.Latitude = input.Latitude
	profile.Longitude = input.Longitude
	profile.Interests = input.Interests
	profile.Kids = input.Kids
	if input.SearchRadius > 0 {
		profile.SearchRadius = input.SearchRadius
	}

	if err := ctrl.profiles.Update(c.Request.Context(), profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"profile": profile,
	})
}

// GetProfile returns another family's profile by family ID.
func (ctrl *ProfileController) GetProfile(c *gin.Context) {
	familyID := c.Param("id")

	profile, err := ctrl.profiles.GetByID(c.Request.Context(), familyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// UploadPhoto stores a base64-encoded profile picture and records its URL.
func (ctrl *ProfileController) UploadPhoto(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	profile, err := ctrl.profiles.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	var input PhotoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, ext, err := decodeImage(input.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image data"})
		return
	}

	if err := os.MkdirAll(ctrl.uploadDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store photo"})
		return
	}

	filename := fmt.Sprintf("%s%s", profile.FamilyID, ext)
	path := filepath.Join(ctrl.uploadDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store photo"})
		return
	}

	url := "/uploads/" + filename
	if err := ctrl.profiles.UpdatePicture(c.Request.Context(), profile.FamilyID, url); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Photo uploaded successfully",
		"profile_picture": url,
	})
}

// decodeImage accepts a data URL or raw base64 payload and returns the
// bytes plus a file extension inferred from the declared media type.
func decodeImage(raw string) ([]byte, string, error) {
	ext := ".jpg"
	payload := raw

	if strings.HasPrefix(raw, "data:") {
		idx := strings.Index(raw, ",")
		if idx < 0 {
			return nil, "", errors.New("malformed data URL")
		}
		header := raw[:idx]
		payload = raw[idx+1:]
		if strings.Contains(header, "image/png") {
			ext = ".png"
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", err
	}
	return data, ext, nil
}
