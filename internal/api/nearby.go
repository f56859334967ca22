package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dietpal/backend/internal/places"
)

const defaultRadiusKM = 10

// NearbyHandler serves location lookups over the bundled sample dataset.
type NearbyHandler struct{}

// NewNearbyHandler creates the nearby handler.
func NewNearbyHandler() *NearbyHandler {
	return &NearbyHandler{}
}

// RegisterRoutes registers the nearby route on the group.
func (h *NearbyHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/nearby", h.Nearby)
}

// Nearby lists restaurants or ingredient markets within a radius of a point.
func (h *NearbyHandler) Nearby(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng query params required"})
		return
	}

	radius := float64(defaultRadiusKM)
	if raw := c.Query("radius"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			radius = parsed
		}
	}

	kind := c.DefaultQuery("type", "restaurants")
	results := places.Nearby(lat, lng, radius, kind)
	c.JSON(http.StatusOK, gin.H{"results": results})
}
