package handler

import (
	"tipmap-service/internal/repository"
	"tipmap-service/internal/service"
	"tipmap-service/pkg/config"
	"tipmap-service/pkg/database"
	"tipmap-service/pkg/geocode"
	"tipmap-service/pkg/logger"
)

var (
	submissions *service.SubmissionService
	stats       *service.StatsService
	places      *geocode.Client
)

// Init wires the handler package against the initialized database and the
// place-search collaborator. Must be called after database.InitDB.
func Init(cfg *config.Config) {
	db := database.GetDB()
	businesses := repository.NewBusinessRepository(db)
	reports := repository.NewReportRepository(db)
	log := logger.GetLogger()

	submissions = service.NewSubmissionService(businesses, reports, log)
	stats = service.NewStatsService(businesses, reports, log)
	places = geocode.NewClient(cfg.Geocoding)
}
