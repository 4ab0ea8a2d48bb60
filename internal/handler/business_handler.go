package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"tipmap-service/internal/model"
	"tipmap-service/internal/repository"
	"tipmap-service/pkg/logger"
	"tipmap-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	defaultNearbyRadiusMeters = 5000.0
	reportHistoryPageSize     = 10
)

// ListBusinesses returns businesses with their consensus views. With lat and
// lng query parameters it returns businesses near that point (for the map
// viewport); otherwise a paginated listing filtered by name and practice.
func ListBusinesses(c echo.Context) error {
	log := logger.FromContext(c)
	defer prometheus.TrackDBOperation("list_businesses")(time.Now())

	// Nearby mode
	latParam, lngParam := c.QueryParam("lat"), c.QueryParam("lng")
	if latParam != "" || lngParam != "" {
		lat, latErr := strconv.ParseFloat(latParam, 64)
		lng, lngErr := strconv.ParseFloat(lngParam, 64)
		if latErr != nil || lngErr != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":             "invalid_request",
				"error_description": "lat and lng must both be valid coordinates",
			})
		}
		radius := defaultNearbyRadiusMeters
		if radiusParam := c.QueryParam("radius"); radiusParam != "" {
			parsed, err := strconv.ParseFloat(radiusParam, 64)
			if err != nil || parsed <= 0 {
				return c.JSON(http.StatusBadRequest, echo.Map{
					"error":             "invalid_request",
					"error_description": "radius must be a positive number of meters",
				})
			}
			radius = parsed
		}

		nearby, err := stats.Nearby(c.Request().Context(), lat, lng, radius)
		if err != nil {
			log.Error("Failed to list nearby businesses", zap.Error(err))
			return c.JSON(http.StatusServiceUnavailable, echo.Map{
				"error":             "temporarily_unavailable",
				"error_description": "Could not load businesses right now, please try again",
			})
		}
		return c.JSON(http.StatusOK, echo.Map{"businesses": nearby})
	}

	// Listing mode
	filter := repository.BusinessFilter{
		NameQuery:   c.QueryParam("q"),
		TipPractice: model.TipPractice(c.QueryParam("tip_practice")),
	}
	if filter.TipPractice != "" && !filter.TipPractice.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":             "invalid_request",
			"error_description": "Unknown tip practice filter",
		})
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

	list, total, err := stats.List(c.Request().Context(), filter, page, pageSize)
	if err != nil {
		log.Error("Failed to list businesses", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"error":             "temporarily_unavailable",
			"error_description": "Could not load businesses right now, please try again",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"businesses": list,
		"total":      total,
	})
}

// GetBusiness returns one business's consensus view together with a page of
// its report history, newest first.
func GetBusiness(c echo.Context) error {
	log := logger.FromContext(c)
	defer prometheus.TrackDBOperation("get_business")(time.Now())

	id := c.Param("id")
	business, err := stats.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error":             "not_found",
				"error_description": "Business not found",
			})
		}
		log.Error("Failed to load business", zap.String("business_id", id), zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"error":             "temporarily_unavailable",
			"error_description": "Could not load the business right now, please try again",
		})
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	reports, total, err := stats.ReportHistory(c.Request().Context(), id, page, reportHistoryPageSize)
	if err != nil {
		log.Error("Failed to load report history", zap.String("business_id", id), zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"error":             "temporarily_unavailable",
			"error_description": "Could not load the report history right now, please try again",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"business":      business,
		"reports":       reports,
		"total_reports": total,
	})
}
