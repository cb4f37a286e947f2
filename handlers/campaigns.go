package handlers

import (
	"errors"
	"net/http"

	"linktrap/services"

	"github.com/gin-gonic/gin"
)

// CampaignStats serves GET /api/campaigns: per-campaign link/click counts
// and click-through ratios, most clicked first.
func CampaignStats(c *gin.Context) {
	stats, err := services.AggregateCampaigns()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate campaigns"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": stats})
}

// DeleteCampaign removes all links of a campaign together with their
// clicks. The synthetic "(none)" bucket is rejected with a domain error.
func DeleteCampaign(c *gin.Context) {
	name := c.Param("name")

	deleted, err := services.DeleteCampaign(name)
	if errors.Is(err, services.ErrProtectedCampaign) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "this campaign cannot be deleted"})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to delete campaign"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted_links": deleted})
}
