package handlers

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"linktrap/config"
	"linktrap/services"

	"github.com/gin-gonic/gin"
)

type logItem struct {
	ID        uint     `json:"id"`
	TS        string   `json:"ts"`
	IP        string   `json:"ip"`
	UserAgent string   `json:"user_agent"`
	Referer   string   `json:"referer"`
	Path      string   `json:"path"`
	FileName  string   `json:"file_name"`
	Campaign  *string  `json:"campaign"`
	Country   *string  `json:"country"`
	Region    *string  `json:"region"`
	City      *string  `json:"city"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	LinkID    string   `json:"link_id"`
	ClickURL  string   `json:"click_url"`
	QRURL     string   `json:"qr_url"`
}

// APILogs serves GET /api/logs: the filtered, paginated click log joined
// with link data.
func APILogs(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "25"))

		filter := services.ClickFilter{
			IP:       c.Query("ip"),
			Campaign: c.Query("campaign"),
			FileName: c.Query("file"),
			Search:   c.Query("q"),
			Days:     c.Query("days"),
		}

		result, err := services.QueryClicks(filter, page, perPage)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query clicks"})
			return
		}

		base := baseURL(cfg, c)
		items := make([]logItem, 0, len(result.Items))
		for _, row := range result.Items {
			items = append(items, logItem{
				ID:        row.ID,
				TS:        row.TS.Format(time.RFC3339),
				IP:        row.IP,
				UserAgent: row.UserAgent,
				Referer:   row.Referer,
				Path:      row.Path,
				FileName:  row.FileName,
				Campaign:  row.Campaign,
				Country:   row.Country,
				Region:    row.Region,
				City:      row.City,
				Lat:       row.Lat,
				Lon:       row.Lon,
				LinkID:    row.LinkID,
				ClickURL:  clickURL(base, row.LinkID),
				QRURL:     qrURL(base, row.LinkID),
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"page":     result.Page,
			"per_page": result.PerPage,
			"total":    result.Total,
			"items":    items,
		})
	}
}

var exportHeader = []string{
	"timestamp", "ip", "user_agent", "referer", "path", "file_name",
	"campaign", "country", "region", "city", "lat", "lon", "link_id",
}

// ExportLogs serves GET /logs/export?format=csv|json: the full unfiltered
// click log as a download. CSV is the default format.
func ExportLogs(c *gin.Context) {
	rows, err := services.ExportRows()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export clicks"})
		return
	}

	if c.DefaultQuery("format", "csv") == "json" {
		type exportItem struct {
			TS       string   `json:"ts"`
			IP       string   `json:"ip"`
			UA       string   `json:"ua"`
			Referer  string   `json:"referer"`
			Path     string   `json:"path"`
			FileName string   `json:"file_name"`
			Campaign *string  `json:"campaign"`
			Country  *string  `json:"country"`
			Region   *string  `json:"region"`
			City     *string  `json:"city"`
			Lat      *float64 `json:"lat"`
			Lon      *float64 `json:"lon"`
			LinkID   string   `json:"link_id"`
		}
		items := make([]exportItem, 0, len(rows))
		for _, row := range rows {
			items = append(items, exportItem{
				TS:       row.TS.Format(time.RFC3339),
				IP:       row.IP,
				UA:       row.UserAgent,
				Referer:  row.Referer,
				Path:     row.Path,
				FileName: row.FileName,
				Campaign: row.Campaign,
				Country:  row.Country,
				Region:   row.Region,
				City:     row.City,
				Lat:      row.Lat,
				Lon:      row.Lon,
				LinkID:   row.LinkID,
			})
		}
		c.Header("Content-Disposition", `attachment; filename="logs.json"`)
		c.JSON(http.StatusOK, items)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="logs.csv"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(exportHeader)
	for _, row := range rows {
		_ = w.Write([]string{
			row.TS.Format(time.RFC3339),
			row.IP,
			row.UserAgent,
			row.Referer,
			row.Path,
			row.FileName,
			derefString(row.Campaign),
			derefString(row.Country),
			derefString(row.Region),
			derefString(row.City),
			derefFloat(row.Lat),
			derefFloat(row.Lon),
			row.LinkID,
		})
	}
	w.Flush()
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
