package services

import (
	"context"
	"crypto/subtle"
	"strconv"
	"strings"
	"time"

	"linktrap/database"
	"linktrap/geo"
	"linktrap/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	defaultPerPage = 25
	maxPerPage     = 200
)

// ClickMeta carries the requester metadata extracted from the inbound
// request by the handler.
type ClickMeta struct {
	IP        string
	UserAgent string
	Referer   string
	Path      string
}

// RecordClick validates a tracking access and appends a click row. The
// token comparison is constant-time and an empty configured secret never
// matches. Geolocation is best-effort: any locator failure is logged and
// recorded as empty. The insert is synchronous; its failure is the
// caller's failure. Replays with a valid token are counted again on
// purpose.
func RecordClick(ctx context.Context, linkID, suppliedToken, secretToken string, locator geo.Locator, meta ClickMeta) (*models.Link, error) {
	link, err := GetLink(linkID)
	if err != nil {
		return nil, err
	}

	if secretToken == "" || subtle.ConstantTimeCompare([]byte(suppliedToken), []byte(secretToken)) != 1 {
		return nil, ErrInvalidToken
	}

	click := models.Click{
		LinkID:    link.ID,
		TS:        time.Now().UTC(),
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Referer:   meta.Referer,
		Path:      meta.Path,
	}

	if locator != nil {
		loc, err := locator.Lookup(ctx, meta.IP)
		if err != nil {
			log.Debug().Err(err).Str("ip", meta.IP).Msg("geolocation lookup failed")
		} else if !loc.Empty() {
			if loc.Country != "" {
				click.Country = &loc.Country
			}
			if loc.Region != "" {
				click.Region = &loc.Region
			}
			if loc.City != "" {
				click.City = &loc.City
			}
			click.Lat = loc.Lat
			click.Lon = loc.Lon
		}
	}

	if err := database.DB.Create(&click).Error; err != nil {
		return nil, err
	}

	log.Info().
		Str("link_id", link.ID).
		Str("ip", meta.IP).
		Str("campaign", link.CampaignName()).
		Msg("click recorded")

	return link, nil
}

// ClickFilter selects click log rows. All fields are optional and combine
// with AND; Search alone matches any of user agent, referer or file name.
type ClickFilter struct {
	IP       string // exact match
	Campaign string // exact match
	FileName string // case-insensitive substring
	Search   string // case-insensitive substring over ua/referer/file name
	Days     string // integer lower bound on click age; non-integers are ignored
}

// ClickRow is one click joined with its owning link.
type ClickRow struct {
	ID        uint
	TS        time.Time
	IP        string
	UserAgent string
	Referer   string
	Path      string
	FileName  string
	Campaign  *string
	Country   *string
	Region    *string
	City      *string
	Lat       *float64
	Lon       *float64
	LinkID    string
}

// ClickPage is one page of the filtered click log plus the pre-pagination
// total.
type ClickPage struct {
	Page    int
	PerPage int
	Total   int64
	Items   []ClickRow
}

const clickColumns = "clicks.id, clicks.ts, clicks.ip, clicks.user_agent, clicks.referer, clicks.path, " +
	"links.file_name, links.campaign, clicks.country, clicks.region, clicks.city, clicks.lat, clicks.lon, clicks.link_id"

func clickQuery(f ClickFilter) *gorm.DB {
	q := database.DB.Table("clicks").Joins("JOIN links ON links.id = clicks.link_id")

	if f.IP != "" {
		q = q.Where("clicks.ip = ?", f.IP)
	}
	if f.Campaign != "" {
		q = q.Where("links.campaign = ?", f.Campaign)
	}
	if f.FileName != "" {
		q = q.Where("LOWER(links.file_name) LIKE ?", "%"+likePattern(f.FileName)+"%")
	}
	if f.Search != "" {
		like := "%" + likePattern(f.Search) + "%"
		q = q.Where("LOWER(clicks.user_agent) LIKE ? OR LOWER(clicks.referer) LIKE ? OR LOWER(links.file_name) LIKE ?",
			like, like, like)
	}
	if f.Days != "" {
		if d, err := strconv.Atoi(f.Days); err == nil {
			since := time.Now().UTC().AddDate(0, 0, -d)
			q = q.Where("clicks.ts >= ?", since)
		}
	}

	return q
}

// QueryClicks returns one page of the click log, newest first with
// insertion order breaking timestamp ties. page is clamped to >= 1 and
// perPage to [1,200].
func QueryClicks(f ClickFilter, page, perPage int) (*ClickPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	} else if perPage > maxPerPage {
		perPage = maxPerPage
	}

	var total int64
	if err := clickQuery(f).Count(&total).Error; err != nil {
		return nil, err
	}

	var items []ClickRow
	err := clickQuery(f).
		Select(clickColumns).
		Order("clicks.ts DESC, clicks.id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Scan(&items).Error
	if err != nil {
		return nil, err
	}

	return &ClickPage{Page: page, PerPage: perPage, Total: total, Items: items}, nil
}

// ExportRows returns the complete unfiltered click log, newest first, for
// CSV or JSON export. No pagination: every row is included.
func ExportRows() ([]ClickRow, error) {
	var rows []ClickRow
	err := clickQuery(ClickFilter{}).
		Select(clickColumns).
		Order("clicks.ts DESC, clicks.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CampaignStats aggregates one campaign's links and clicks.
type CampaignStats struct {
	Campaign string  `json:"campaign"`
	Links    int64   `json:"links"`
	Clicks   int64   `json:"clicks"`
	CTR      float64 `json:"ctr"`
}

// AggregateCampaigns groups all links by campaign with per-group link and
// click counts, ordered by clicks descending. Campaigns without clicks are
// kept; links without a campaign land in the "(none)" bucket.
func AggregateCampaigns() ([]CampaignStats, error) {
	var rows []struct {
		Campaign   *string
		LinkCount  int64
		ClickCount int64
	}

	err := database.DB.Table("links").
		Select("links.campaign AS campaign, COUNT(DISTINCT links.id) AS link_count, COUNT(clicks.id) AS click_count").
		Joins("LEFT JOIN clicks ON clicks.link_id = links.id").
		Group("links.campaign").
		Order("click_count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make([]CampaignStats, 0, len(rows))
	for _, r := range rows {
		name := models.NoCampaign
		if r.Campaign != nil && *r.Campaign != "" {
			name = *r.Campaign
		}
		var ctr float64
		if r.LinkCount > 0 {
			ctr = float64(r.ClickCount) / float64(r.LinkCount)
		}
		stats = append(stats, CampaignStats{
			Campaign: name,
			Links:    r.LinkCount,
			Clicks:   r.ClickCount,
			CTR:      ctr,
		})
	}
	return stats, nil
}

// likePattern lowercases the needle; matching is done on lowercased
// columns so LIKE behaves the same on sqlite and postgres.
func likePattern(s string) string {
	return strings.ToLower(s)
}
