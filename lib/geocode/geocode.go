// Package geocode resolves coordinates to human readable addresses using the
// Google geocoding API or OpenStreetMap's Nominatim service.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

var (
	// ErrRejected is returned when the service refuses the request, eg. a
	// bad api key.
	ErrRejected = errors.New("geocode: request rejected")
	// ErrNoResult is returned when the response carries no address.
	ErrNoResult = errors.New("geocode: no result")
)

// Geocoder does reverse geocoding.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (string, error)
}

// Verifier checks an api key is accepted by the provider.
type Verifier interface {
	Verify(ctx context.Context) error
}

func coord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func getJSON(ctx context.Context, client *http.Client, uri string, header http.Header, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return err
	}
	for k, vs := range header {
		req.Header[k] = vs
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized {
		return errors.Wrapf(ErrRejected, "http status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocode: http status %d", resp.StatusCode)
	}
	return errors.Wrap(json.NewDecoder(resp.Body).Decode(v), "geocode: decoding response")
}

const GoogleUrl = "https://maps.googleapis.com/maps/api/geocode/json"

// Fixed coordinate (Vienna) looked up to verify a key.
const (
	VerifyLatitude  = 48.2082
	VerifyLongitude = 16.3738
)

// Google geocoding API client.
type Google struct {
	Url    string
	Key    string
	Client *http.Client
}

func NewGoogle(key string) *Google {
	return &Google{Url: GoogleUrl, Key: key, Client: http.DefaultClient}
}

type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
}

func (self *Google) lookup(ctx context.Context, lat, lng float64) (*googleResponse, error) {
	vs := url.Values{
		"latlng": []string{coord(lat) + "," + coord(lng)},
		"key":    []string{self.Key},
	}
	var resp googleResponse
	if err := getJSON(ctx, self.Client, self.Url+"?"+vs.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	switch resp.Status {
	case "OK", "ZERO_RESULTS":
		return &resp, nil
	case "REQUEST_DENIED", "INVALID_REQUEST":
		return nil, errors.Wrap(ErrRejected, resp.ErrorMessage)
	default:
		return nil, fmt.Errorf("geocode: status %s %s", resp.Status, resp.ErrorMessage)
	}
}

func (self *Google) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	resp, err := self.lookup(ctx, lat, lng)
	if err != nil {
		return "", err
	}
	if len(resp.Results) == 0 || resp.Results[0].FormattedAddress == "" {
		return "", ErrNoResult
	}
	return resp.Results[0].FormattedAddress, nil
}

// Verify the key by looking up a fixed, well known coordinate.
func (self *Google) Verify(ctx context.Context) error {
	if self.Key == "" {
		return errors.Wrap(ErrRejected, "empty key")
	}
	resp, err := self.lookup(ctx, VerifyLatitude, VerifyLongitude)
	if err != nil {
		return err
	}
	if resp.Status != "OK" {
		return errors.Wrapf(ErrRejected, "status %s", resp.Status)
	}
	return nil
}

const NominatimUrl = "https://nominatim.openstreetmap.org/reverse"

// Nominatim (OpenStreetMap) reverse geocoding client. The usage policy
// requires an identifying User-Agent.
type Nominatim struct {
	Url       string
	UserAgent string
	Client    *http.Client
}

func NewNominatim() *Nominatim {
	return &Nominatim{Url: NominatimUrl, UserAgent: "geotracker", Client: http.DefaultClient}
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

func (self *Nominatim) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	vs := url.Values{
		"format": []string{"jsonv2"},
		"lat":    []string{coord(lat)},
		"lon":    []string{coord(lng)},
	}
	header := http.Header{"User-Agent": []string{self.UserAgent}}
	var resp nominatimResponse
	if err := getJSON(ctx, self.Client, self.Url+"?"+vs.Encode(), header, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", errors.Wrap(ErrNoResult, resp.Error)
	}
	if resp.DisplayName == "" {
		return "", ErrNoResult
	}
	return resp.DisplayName, nil
}
