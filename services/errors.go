package services

import "errors"

var (
	// ErrLinkNotFound signals an unknown link id.
	ErrLinkNotFound = errors.New("link not found")
	// ErrInvalidToken signals a tracking access with a wrong or missing token.
	ErrInvalidToken = errors.New("invalid access token")
	// ErrProtectedCampaign signals an attempt to delete the synthetic
	// no-campaign bucket.
	ErrProtectedCampaign = errors.New("this campaign cannot be deleted")
)
