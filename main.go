package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"CryptoStrategyEval/config"
	"CryptoStrategyEval/internal/handlers"
	applog "CryptoStrategyEval/internal/logger"
	"CryptoStrategyEval/internal/models"
	"CryptoStrategyEval/internal/operations/backtest"
	"CryptoStrategyEval/internal/operations/binance"
	"CryptoStrategyEval/internal/repositories"
	"CryptoStrategyEval/internal/scheduler"
	"CryptoStrategyEval/internal/services/strategy"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	// Load configuration
	cfg, envFound, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	appLog := applog.New(applog.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	applog.SetGlobalLogger(appLog)
	if !envFound {
		log.Info().Msg("No .env file found, using environment")
	}

	// Setup database
	db := setupDatabase(cfg.Database)

	// Initialize repositories
	priceRepo := repositories.NewPriceRepository(db)
	evaluationRepo := repositories.NewEvaluationRepository(db)

	// Setup evaluation components
	mode, err := backtest.ParseSearchMode(cfg.Evaluation.SearchMode)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid threshold search mode")
	}

	strategyConfig := backtest.NewConfig()
	strategyConfig.TransactionFee = cfg.Evaluation.TransactionFee
	strategyConfig.BidAskSpread = cfg.Evaluation.BidAskSpread

	strategyManager := strategy.NewStrategyManager(cfg.Evaluation.ScoreFile)
	if _, err := strategyManager.MaxLookback(append(cfg.Evaluation.Signals, cfg.Evaluation.CompareSignal)...); err != nil {
		log.Fatal().Err(err).Strs("available", strategyManager.Names()).Msg("Invalid signal configuration")
	}

	engine := backtest.NewEngine(
		backtest.NewOptimizer(mode),
		backtest.PeriodsPerYear[cfg.Evaluation.TimeFrame],
		appLog,
	)

	evaluationHandler := handlers.NewEvaluationHandler(
		priceRepo,
		evaluationRepo,
		strategyManager,
		engine,
		handlers.EvaluationSettings{
			TimeFrame:           cfg.Evaluation.TimeFrame,
			HistoryDays:         cfg.Evaluation.HistoryDays,
			CalibrationFraction: cfg.Evaluation.CalibrationFraction,
			Signals:             cfg.Evaluation.Signals,
			CompareSignal:       cfg.Evaluation.CompareSignal,
			Strategy:            strategyConfig,
		},
		cfg.Symbols,
		appLog,
	)

	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize Binance client and price handler
	var priceHandler *handlers.PriceHandler
	var refresher scheduler.PriceRefresher
	if !cfg.Evaluation.SkipSync {
		client := binance.NewBinanceClient(cfg.Exchange.APIKey, cfg.Exchange.SecretKey, appLog)
		priceHandler = handlers.NewPriceHandler(client, priceRepo, cfg.Symbols, cfg.Evaluation.TimeFrame, cfg.Evaluation.HistoryDays, appLog)
		refresher = priceHandler
	}

	job := scheduler.NewEvaluationJob(ctx, refresher, evaluationHandler)
	sched := scheduler.New(appLog)

	// Without a schedule, evaluate once and exit
	if cfg.Evaluation.Schedule == "" {
		if err := sched.RunNow(job); err != nil {
			log.Error().Err(err).Msg("Evaluation finished with errors")
			os.Exit(1)
		}
		log.Info().Msg("Evaluation complete")
		return
	}

	if priceHandler != nil {
		if err := priceHandler.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start price handler")
		}
		log.Info().Msg("Price recording started")
	}

	if err := sched.AddJob(cfg.Evaluation.Schedule, job); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule evaluation")
	}
	if err := sched.RunNow(job); err != nil {
		log.Warn().Err(err).Msg("Initial evaluation finished with errors")
	}
	sched.Start()

	// Handle shutdown
	<-ctx.Done()

	log.Info().Msg("Shutting down...")
	sched.Stop()
	log.Info().Msg("Shutdown complete")
}

func setupDatabase(dbConfig config.DatabaseConfig) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Auto migrate database schemas
	err = db.AutoMigrate(
		&models.Price{},
		&models.Evaluation{},
		&models.PortfolioSnapshot{},
		&models.Rebalance{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	return db
}
