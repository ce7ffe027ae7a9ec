package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyunwoo/stockgrid/internal/api"
	"github.com/hyunwoo/stockgrid/internal/api/handlers"
	"github.com/hyunwoo/stockgrid/internal/grid"
	"github.com/hyunwoo/stockgrid/internal/query"
	"github.com/hyunwoo/stockgrid/internal/scheduler"
	"github.com/hyunwoo/stockgrid/internal/scheduler/jobs"
	"github.com/hyunwoo/stockgrid/internal/store"
	"github.com/hyunwoo/stockgrid/pkg/config"
	"github.com/hyunwoo/stockgrid/pkg/database"
	"github.com/hyunwoo/stockgrid/pkg/logger"
	"github.com/hyunwoo/stockgrid/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `주가 그리드 REST API 서버를 시작합니다.

Endpoints:
  GET /health                     - Health check
  GET /api/stock/data             - 전체 시세 그리드 (등락률 랭킹)
  GET /api/stock/limit-up         - 상한가 종목
  GET /api/stock/limit-down       - 하한가 종목
  GET /api/stock/half-year-line   - 반년선(ma120) 종목
  GET /api/stock/year-line        - 연선(ma250) 종목

Example:
  go run ./cmd/stockgrid api
  go run ./cmd/stockgrid api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Stockgrid API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port":      cfg.Port,
		"env":       cfg.Env,
		"page_size": cfg.Stock.PageSize,
	}).Info("Initializing API server")

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	// 4. Connect to Redis (no-op cache when disabled)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	gridCache := redis.NewCache(redisClient, "stockgrid")

	// 5. Create repository, planner and builder
	stockRepo := store.NewStockRepository(db.Pool)
	planner := query.NewPlanner(stockRepo, cfg.Stock.PageSize)
	builder := grid.NewBuilder(planner, stockRepo)

	// 6. Create handler and router
	stockHandler := handlers.NewStockHandler(builder, gridCache, cfg.Redis.CacheTTL, log)
	router := api.NewRouter(stockHandler, log)

	// 7. Create server
	server := api.New(cfg, log, router)

	// 8. Start maintenance scheduler
	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewDBHealthJob(db, log)); err != nil {
		return fmt.Errorf("schedule db health job: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	// 9. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET /health")
	fmt.Println("  GET /api/stock/data")
	fmt.Println("  GET /api/stock/limit-up")
	fmt.Println("  GET /api/stock/limit-down")
	fmt.Println("  GET /api/stock/half-year-line")
	fmt.Println("  GET /api/stock/year-line")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
