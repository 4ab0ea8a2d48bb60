package handler

import (
	"net/http"

	"tipmap-service/pkg/logger"
	"tipmap-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SearchPlaces proxies the external place-search service so the report form
// can pre-fill address fields. The results are suggestions only: the
// submission pipeline hashes the user-confirmed fields, never these.
func SearchPlaces(c echo.Context) error {
	log := logger.FromContext(c)

	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":             "invalid_request",
			"error_description": "q is required",
		})
	}
	country := c.QueryParam("country")
	if country != "" && country != "US" && country != "CA" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":             "invalid_request",
			"error_description": "country must be US or CA",
		})
	}

	results, err := places.Search(c.Request().Context(), query, country)
	if err != nil {
		prometheus.RecordGeocodeRequest("error")
		log.Error("Place search failed", zap.String("query", query), zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"error":             "temporarily_unavailable",
			"error_description": "Place search is unavailable right now, please try again",
		})
	}

	prometheus.RecordGeocodeRequest("ok")
	return c.JSON(http.StatusOK, echo.Map{"places": results})
}
