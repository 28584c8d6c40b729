package main

import (
	"fmt"
	"os"

	"github.com/nurpe/contracts-billing/internal/auth"
	"github.com/nurpe/contracts-billing/internal/config"
	"github.com/nurpe/contracts-billing/internal/db"
	"github.com/nurpe/contracts-billing/internal/excel"
	httphandler "github.com/nurpe/contracts-billing/internal/http"
	"github.com/nurpe/contracts-billing/internal/http/middleware"
	"github.com/nurpe/contracts-billing/internal/logger"
	"github.com/nurpe/contracts-billing/internal/pdf"
	"github.com/nurpe/contracts-billing/internal/repository"
	"github.com/nurpe/contracts-billing/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	ledger := repository.NewLedgerRepository(database)

	contracts := service.NewContractService(ledger, log)
	payments := service.NewPaymentService(ledger, cfg, log)
	reports := service.NewReportService(ledger, excel.NewGenerator(), pdf.NewGenerator(), log)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(contracts, payments, reports, log)
	authMiddleware := middleware.Auth(tokenParser, ledger)
	router := httphandler.NewRouter(handler, authMiddleware, log, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting contracts service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
