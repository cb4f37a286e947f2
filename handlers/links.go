package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"linktrap/config"
	"linktrap/services"

	"github.com/gin-gonic/gin"
)

type generateRequest struct {
	File     string `json:"file"`
	Campaign string `json:"campaign"`
	Count    int    `json:"count"`
}

// Index returns the most recent links for the dashboard landing page.
func Index(c *gin.Context) {
	links, err := services.ListLinks(20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list links"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"links": links})
}

// APILinks returns the latest 200 links.
func APILinks(c *gin.Context) {
	links, err := services.ListLinks(200)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list links"})
		return
	}
	c.JSON(http.StatusOK, links)
}

// GenerateForm handles the dashboard form variant of link generation and
// redirects back to the index.
func GenerateForm(c *gin.Context) {
	count, _ := strconv.Atoi(c.DefaultPostForm("count", "1"))

	_, err := services.CreateLinks(c.PostForm("file"), c.PostForm("campaign"), count)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create links"})
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// APIGenerate handles the JSON variant of link generation and returns the
// created ids with their absolute tracking URLs.
func APIGenerate(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req generateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
			return
		}

		links, err := services.CreateLinks(req.File, req.Campaign, req.Count)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to create links"})
			return
		}

		base := baseURL(cfg, c)
		ids := make([]string, 0, len(links))
		urls := make([]string, 0, len(links))
		for _, l := range links {
			ids = append(ids, l.ID)
			urls = append(urls, clickURL(base, l.ID))
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "ids": ids, "urls": urls})
	}
}

// DeleteLink removes a single link and its clicks. Registered for both
// POST and DELETE; absence is a definite 404, never a silent success.
func DeleteLink(c *gin.Context) {
	id := c.Param("link_id")

	err := services.DeleteLink(id)
	if errors.Is(err, services.ErrLinkNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "link not found"})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete link"})
		return
	}

	c.Status(http.StatusNoContent)
}
