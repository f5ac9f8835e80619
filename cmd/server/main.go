package main

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"

	"github.com/smartor/case-ledger/internal/adapter/extractor"
	"github.com/smartor/case-ledger/internal/adapter/handler"
	"github.com/smartor/case-ledger/internal/adapter/handler/pb"
	"github.com/smartor/case-ledger/internal/adapter/storage"
	"github.com/smartor/case-ledger/internal/config"
	"github.com/smartor/case-ledger/internal/core/domain"
	"github.com/smartor/case-ledger/internal/core/service"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	_ = godotenv.Load()
	cfg := config.Load()

	policy, err := domain.ParseStockPolicy(cfg.StockPolicy)
	must(err)

	log.Info().
		Str("http", cfg.HTTPAddr).
		Str("grpc", cfg.GRPCAddr).
		Str("policy", string(policy)).
		Msg("starting case ledger")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL: authoritative catalog + append-only ledger. Connectivity is
	// fatal at session start; no ledger action runs without it.
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	must(err)
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	must(db.PingContext(ctx))
	log.Info().Msg("connected to mysql")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	must(rdb.Ping(ctx).Err())
	log.Info().Msg("connected to redis")

	mysqlAdapter := storage.NewMySQLAdapter(db)
	redisAdapter := storage.NewRedisAdapter(rdb)

	gemini, err := extractor.NewGeminiExtractor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	must(err)

	if cfg.SeedOnStart {
		must(mysqlAdapter.SeedItems(ctx, seedCatalog()))
		log.Info().Msg("seeded initial catalog")
	}

	ledgerService := service.NewLedgerService(mysqlAdapter, mysqlAdapter, redisAdapter, gemini, policy)
	aggregator := service.NewCaseAggregator(mysqlAdapter)
	reportService := service.NewReportService(gemini, aggregator)

	snap, err := ledgerService.LoadSnapshot(ctx)
	must(err)
	log.Info().Int("items", len(snap.Names())).Msg("catalog snapshot loaded")

	// gRPC server
	grpcServer := grpc.NewServer()
	grpcHandler := handler.NewGRPCHandler(ledgerService)
	pb.RegisterLedgerServiceServer(grpcServer, grpcHandler)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	must(err)

	go func() {
		log.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Error().Err(err).Msg("gRPC server error")
		}
	}()

	// HTTP server
	httpHandler := handler.NewHTTPHandler(ledgerService, aggregator, reportService)
	mux := http.NewServeMux()
	mux.HandleFunc("/health", httpHandler.HealthCheck)
	mux.HandleFunc("/api/usage", httpHandler.RecordUsage)
	mux.HandleFunc("/api/event", httpHandler.RecordStamp)
	mux.HandleFunc("/api/count", httpHandler.RecordSafetyCount)
	mux.HandleFunc("/api/case/summary", httpHandler.CaseSummary)
	mux.HandleFunc("/api/case/entries", httpHandler.CaseEntries)
	mux.HandleFunc("/api/case/report", httpHandler.CaseReport)
	mux.HandleFunc("/api/picklist", httpHandler.PickList)
	mux.HandleFunc("/api/catalog", httpHandler.Catalog)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Warn().Msg("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Info().Msg("HTTP server stopped")

	grpcServer.GracefulStop()
	log.Info().Msg("gRPC server stopped")

	rdb.Close()
	db.Close()
	log.Info().Msg("connections closed")
}

// seedCatalog provides a minimal starter inventory for fresh installs.
func seedCatalog() []domain.InventoryItem {
	item := func(name string, price float64, unit, category string, onHand int64) domain.InventoryItem {
		return domain.InventoryItem{
			ID:        uuid.New().String(),
			Name:      name,
			UnitPrice: decimal.NewFromFloat(price),
			Unit:      unit,
			Category:  category,
			OnHand:    decimal.NewFromInt(onHand),
		}
	}
	return []domain.InventoryItem{
		item("Propofol", 50, "amp", "Drug", 20),
		item("Fentanyl", 35, "amp", "Drug", 30),
		item("Vicryl 3-0", 120, "pack", "Suture", 40),
		item("Surgical Gauze", 8, "pack", "Disposable", 200),
		item("Laparoscopic Trocar 5mm", 950, "pc", "Instrument", 12),
	}
}

func must(err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}
