package geocode_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tipmap-service/pkg/config"
	"tipmap-service/pkg/geocode"
)

const samplePayload = `{
  "features": [
    {
      "text": "Cafe A",
      "place_name": "Cafe A, 1 Main St, Springfield, Illinois 62704, United States",
      "center": [-89.65, 39.8],
      "properties": {"address": "1 Main St"},
      "context": [
        {"id": "postcode.123", "text": "62704"},
        {"id": "place.456", "text": "Springfield"},
        {"id": "region.789", "text": "Illinois", "short_code": "US-IL"}
      ]
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*geocode.Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := geocode.NewClient(config.GeocodingConfig{
		BaseURL:     server.URL,
		AccessToken: "test-token",
		Timeout:     2 * time.Second,
	})
	return client, server
}

func TestSearchParsesPlaces(t *testing.T) {
	var gotQuery, gotCountry string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Path
		gotCountry = r.URL.Query().Get("country")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(samplePayload))
	})

	places, err := client.Search(context.Background(), "Cafe A Springfield", "US")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if gotQuery != "/Cafe A Springfield.json" {
		t.Errorf("Unexpected request path %q", gotQuery)
	}
	if gotCountry != "US" {
		t.Errorf("Expected country US, got %q", gotCountry)
	}

	if len(places) != 1 {
		t.Fatalf("Expected one place, got %d", len(places))
	}
	place := places[0]
	if place.Name != "Cafe A" || place.Address != "1 Main St" {
		t.Errorf("Unexpected name/address: %+v", place)
	}
	if place.City != "Springfield" || place.State != "IL" || place.ZipCode != "62704" {
		t.Errorf("Unexpected address context: %+v", place)
	}
	if place.Latitude != 39.8 || place.Longitude != -89.65 {
		t.Errorf("Unexpected coordinates: %+v", place)
	}
}

func TestSearchOmitsCountryWhenUnset(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("country") {
			t.Error("Expected no country parameter")
		}
		w.Write([]byte(`{"features": []}`))
	})

	places, err := client.Search(context.Background(), "coffee", "")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(places) != 0 {
		t.Errorf("Expected no places, got %d", len(places))
	}
}

func TestSearchUpstreamFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	if _, err := client.Search(context.Background(), "coffee", "US"); err == nil {
		t.Error("Expected an error on upstream failure")
	}
}
