package services

import (
	"errors"
	"strings"
	"time"

	"linktrap/database"
	"linktrap/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// DefaultFileName is used when a generation request leaves the decoy
	// file name blank.
	DefaultFileName = "payroll_2025.pdf"

	minLinkCount = 1
	maxLinkCount = 100

	maxListLimit = 200
)

// CreateLinks mints count links sharing a decoy file name and an optional
// campaign. count is clamped to [1,100]; a blank campaign is stored as
// absent.
func CreateLinks(fileName, campaign string, count int) ([]models.Link, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		fileName = DefaultFileName
	}

	var campaignPtr *string
	if trimmed := strings.TrimSpace(campaign); trimmed != "" {
		campaignPtr = &trimmed
	}

	if count < minLinkCount {
		count = minLinkCount
	} else if count > maxLinkCount {
		count = maxLinkCount
	}

	now := time.Now().UTC()
	links := make([]models.Link, 0, count)
	for i := 0; i < count; i++ {
		links = append(links, models.Link{
			ID:        uuid.New().String(),
			FileName:  fileName,
			Campaign:  campaignPtr,
			CreatedAt: now,
		})
	}

	if err := database.DB.Create(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// GetLink fetches a link by id.
func GetLink(id string) (*models.Link, error) {
	var link models.Link
	result := database.DB.First(&link, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, result.Error
	}
	return &link, nil
}

// ListLinks returns the most recently created links, newest first.
func ListLinks(limit int) ([]models.Link, error) {
	if limit < 1 {
		limit = 1
	} else if limit > maxListLimit {
		limit = maxListLimit
	}

	var links []models.Link
	result := database.DB.Order("created_at desc").Limit(limit).Find(&links)
	if result.Error != nil {
		return nil, result.Error
	}
	return links, nil
}

// DeleteLink removes a link and all of its clicks in one transaction.
func DeleteLink(id string) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("link_id = ?", id).Delete(&models.Click{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Link{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrLinkNotFound
		}
		return nil
	})
}

// DeleteCampaign removes every link of the named campaign together with
// their clicks and returns the number of deleted links. The synthetic
// no-campaign bucket is protected. An unknown campaign deletes nothing.
func DeleteCampaign(name string) (int64, error) {
	if name == models.NoCampaign {
		return 0, ErrProtectedCampaign
	}

	var deleted int64
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		linkIDs := tx.Model(&models.Link{}).Select("id").Where("campaign = ?", name)
		if err := tx.Where("link_id IN (?)", linkIDs).Delete(&models.Click{}).Error; err != nil {
			return err
		}
		result := tx.Where("campaign = ?", name).Delete(&models.Link{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
