// Package geocode is a thin client for the external place-search service.
// Its results are only ever offered back to the submitter as form pre-fill;
// the identity hash is always computed from the user-confirmed fields.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"tipmap-service/pkg/config"
)

// Place is one candidate establishment with normalized address fields.
type Place struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	ZipCode   string  `json:"zip_code"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Client queries a Mapbox-style forward-geocoding API.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

func NewClient(cfg config.GeocodingConfig) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
	}
}

// geocodingResponse mirrors the subset of the upstream payload we consume.
type geocodingResponse struct {
	Features []struct {
		Text       string     `json:"text"`
		PlaceName  string     `json:"place_name"`
		Center     [2]float64 `json:"center"` // [longitude, latitude]
		Properties struct {
			Address string `json:"address"`
		} `json:"properties"`
		Context []struct {
			ID        string `json:"id"`
			Text      string `json:"text"`
			ShortCode string `json:"short_code"`
		} `json:"context"`
	} `json:"features"`
}

// Search returns candidate places for a free-text query. Country, when set,
// must be "US" or "CA" and restricts results to that country.
func (c *Client) Search(ctx context.Context, query, country string) ([]Place, error) {
	params := url.Values{}
	params.Set("access_token", c.accessToken)
	params.Set("types", "poi")
	params.Set("permanent", "false")
	params.Set("limit", "5")
	if country != "" {
		params.Set("country", country)
	}

	endpoint := fmt.Sprintf("%s/%s.json?%s", c.baseURL, url.PathEscape(query), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("place search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("place search returned status %d", resp.StatusCode)
	}

	var payload geocodingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode place search response: %w", err)
	}

	places := make([]Place, 0, len(payload.Features))
	for _, feature := range payload.Features {
		place := Place{
			Name:      feature.Text,
			Address:   feature.Properties.Address,
			Longitude: feature.Center[0],
			Latitude:  feature.Center[1],
		}
		for _, entry := range feature.Context {
			switch {
			case strings.HasPrefix(entry.ID, "postcode"):
				place.ZipCode = entry.Text
			case strings.HasPrefix(entry.ID, "place"):
				place.City = entry.Text
			case strings.HasPrefix(entry.ID, "region"):
				// short_code arrives as "US-IL"; keep the state part.
				if idx := strings.IndexByte(entry.ShortCode, '-'); idx >= 0 {
					place.State = entry.ShortCode[idx+1:]
				} else {
					place.State = entry.ShortCode
				}
			}
		}
		places = append(places, place)
	}
	return places, nil
}
