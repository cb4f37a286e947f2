package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// ipapiLocator queries the keyless ipapi.co JSON endpoint.
type ipapiLocator struct {
	client  *http.Client
	baseURL string
}

type ipapiResponse struct {
	Error       bool     `json:"error"`
	Reason      string   `json:"reason"`
	CountryName string   `json:"country_name"`
	Region      string   `json:"region"`
	City        string   `json:"city"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

func (p *ipapiLocator) Lookup(ctx context.Context, ip string) (Location, error) {
	local, err := checkIP(ip)
	if err != nil {
		return Location{}, err
	}
	if local {
		return localLocation(), nil
	}

	var result ipapiResponse
	url := fmt.Sprintf("%s/%s/json/", p.baseURL, ip)
	if err := getJSON(ctx, p.client, url, "", &result); err != nil {
		return Location{}, err
	}
	if result.Error {
		return Location{}, fmt.Errorf("ipapi.co lookup failed: %s", result.Reason)
	}

	return Location{
		Country: result.CountryName,
		Region:  result.Region,
		City:    result.City,
		Lat:     result.Latitude,
		Lon:     result.Longitude,
	}, nil
}

// ipinfoLocator queries ipinfo.io, optionally with a bearer token.
type ipinfoLocator struct {
	client  *http.Client
	token   string
	baseURL string
}

type ipinfoResponse struct {
	Country string `json:"country"`
	Region  string `json:"region"`
	City    string `json:"city"`
	Loc     string `json:"loc"` // "lat,lon"
}

func (p *ipinfoLocator) Lookup(ctx context.Context, ip string) (Location, error) {
	local, err := checkIP(ip)
	if err != nil {
		return Location{}, err
	}
	if local {
		return localLocation(), nil
	}

	var result ipinfoResponse
	url := fmt.Sprintf("%s/%s/json", p.baseURL, ip)
	if err := getJSON(ctx, p.client, url, p.token, &result); err != nil {
		return Location{}, err
	}

	loc := Location{
		Country: result.Country,
		Region:  result.Region,
		City:    result.City,
	}
	if parts := strings.Split(result.Loc, ","); len(parts) == 2 {
		if lat, err := strconv.ParseFloat(parts[0], 64); err == nil {
			loc.Lat = &lat
		}
		if lon, err := strconv.ParseFloat(parts[1], 64); err == nil {
			loc.Lon = &lon
		}
	}
	return loc, nil
}

func getJSON(ctx context.Context, client *http.Client, url, bearer string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("geolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geolocation provider returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode geolocation response: %w", err)
	}
	return nil
}
