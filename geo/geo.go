package geo

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Location is the best-effort geolocation of a requester IP. Any field may
// be empty; the zero value means the lookup produced nothing.
type Location struct {
	Country string
	Region  string
	City    string
	Lat     *float64
	Lon     *float64
}

// Empty reports whether the lookup produced no usable data.
func (l Location) Empty() bool {
	return l.Country == "" && l.Region == "" && l.City == "" && l.Lat == nil && l.Lon == nil
}

// Locator resolves an IP address to a Location. Implementations call
// external services; callers must treat every error as "no location".
type Locator interface {
	Lookup(ctx context.Context, ip string) (Location, error)
}

// Lookups are bounded so a slow provider cannot stall click recording.
const lookupTimeout = 4 * time.Second

// New returns a Locator for the configured provider. "ipinfo" selects
// ipinfo.io (token optional), anything else falls back to ipapi.co.
func New(provider, token string) Locator {
	client := &http.Client{Timeout: lookupTimeout}
	if provider == "ipinfo" {
		return &ipinfoLocator{client: client, token: token, baseURL: "https://ipinfo.io"}
	}
	return &ipapiLocator{client: client, baseURL: "https://ipapi.co"}
}

// localLocation is returned for loopback and private addresses, which no
// provider can resolve.
func localLocation() Location {
	return Location{Country: "Local", City: "localhost"}
}

func checkIP(ip string) (local bool, err error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false, fmt.Errorf("invalid ip address: %q", ip)
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsLinkLocalUnicast() || parsed.IsUnspecified() {
		return true, nil
	}
	return false, nil
}
