package models

import (
	"time"
)

// Link is a minted tracking identifier bound to a decoy file name and an
// optional campaign label. The ID is a UUID string and never changes.
type Link struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	FileName  string    `json:"file_name" gorm:"size:255;not null"`
	Campaign  *string   `json:"campaign" gorm:"size:80;index"`
	CreatedAt time.Time `json:"created_at"`
	Clicks    []Click   `json:"clicks,omitempty" gorm:"foreignKey:LinkID;constraint:OnDelete:CASCADE"`
}

// CampaignName returns the campaign label, or the synthetic bucket name
// for links created without one.
func (l *Link) CampaignName() string {
	if l.Campaign == nil || *l.Campaign == "" {
		return NoCampaign
	}
	return *l.Campaign
}

// NoCampaign is the synthetic bucket that groups links without a campaign.
// It cannot be deleted.
const NoCampaign = "(none)"
