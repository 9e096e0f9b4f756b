package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/villagefriends/network_backend/discovery"
	"github.com/villagefriends/network_backend/repository"
)

type DiscoveryController struct {
	engine   *discovery.Engine
	profiles *repository.ProfileRepository
}

func NewDiscoveryController(engine *discovery.Engine, profiles *repository.ProfileRepository) *DiscoveryController {
	return &DiscoveryController{engine: engine, profiles: profiles}
}

// Nearby godoc
// @Summary Find nearby families
// @Description Filters families by location, kid ages and interests, ranked by distance
// @Tags discovery
// @Produce json
// @Security BearerAuth
// @Param zip_code query string false "Exact zip code"
// @Param city query string false "City substring, used with state"
// @Param state query string false "State substring, used with city"
// @Param radius query int false "Search radius in miles (default 25)"
// @Param min_age query int false "Minimum kid age"
// @Param max_age query int false "Maximum kid age"
// @Param interests query string false "Comma-separated interests, any match"
// @Success 200 {object} map[string]interface{} "Matching families"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /api/families/nearby [get]
func (ctrl *DiscoveryController) Nearby(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	requester, err := ctrl.profiles.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	filters := discovery.Filters{
		ZipCode:   c.Query("zip_code"),
		City:      c.Query("city"),
		State:     c.Query("state"),
		Interests: discovery.ParseInterests(c.Query("interests")),
	}
	if v, err := strconv.Atoi(c.Query("radius")); err == nil && v > 0 {
		filters.Radius = v
	}
	if v, err := strconv.Atoi(c.Query("min_age")); err == nil && v >= 0 {
		filters.MinAge = &v
	}
	if v, err := strconv.Atoi(c.Query("max_age")); err == nil && v >= 0 {
		filters.MaxAge = &v
	}

	results, err := ctrl.engine.FindNearby(c.Request.Context(), userID, requester, filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search families"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"families": results,
		"count":    len(results),
	})
}

// Search matches families by free text over name, city and bio.
func (ctrl *DiscoveryController) Search(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	text := c.Query("q")
	interests := discovery.ParseInterests(c.Query("interests"))

	results, err := ctrl.profiles.SearchText(c.Request.Context(), userID, text, interests)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search families"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"families": results,
		"count":    len(results),
	})
}
