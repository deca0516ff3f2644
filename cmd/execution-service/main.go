package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/executor/classifier"
	"golang-market-intel/internal/executor/config"
	"golang-market-intel/internal/executor/repository"
	"golang-market-intel/internal/executor/service"
	"golang-market-intel/internal/executor/strategy"
	"golang-market-intel/internal/store"
	"golang-market-intel/pkg/common"
	"golang-market-intel/pkg/logger"
	"golang-market-intel/pkg/redis"
	"golang-market-intel/pkg/telegram"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the execution service and runs both stages on their schedules",
	Run:   runServe,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs one stage once and exits",
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Polls every feed once and archives new relevant items",
	Run: func(cmd *cobra.Command, args []string) {
		runOnce(entity.JobTypeFeedIngestion)
	},
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enriches one batch of pending items",
	Run: func(cmd *cobra.Command, args []string) {
		runOnce(entity.JobTypeNewsEnrichment)
	},
}

type app struct {
	cfg      *config.Config
	logger   *logger.Logger
	executor service.ExecutorService
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.logger.Sync()
}

// bootstrap wires the execution service. Credentials are validated before any
// connection is attempted.
func bootstrap(ctx context.Context) *app {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	a := &app{cfg: cfg, logger: appLogger}

	appLogger.Info("Starting Execution Service", zap.String("name", cfg.App.Name), zap.String("store", cfg.Store.Driver))

	// Initialize AI provider
	var aiRepo repository.AnalysisRepository
	switch cfg.AI.Provider {
	case "gemini":
		genAiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.Gemini.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI client", zap.Error(err))
		}
		aiRepo, err = repository.NewGeminiAIRepository(cfg, appLogger, genAiClient)
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI repository", zap.Error(err))
		}
	case "openai":
		aiRepo, err = repository.NewOpenAIRepository(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize OpenAI repository", zap.Error(err))
		}
	default:
		appLogger.Fatal("Invalid AI provider specified in config", zap.String("provider", cfg.AI.Provider))
	}

	// Initialize store
	st, err := store.Open(ctx, cfg.Store, cfg.Database, cfg.Mongo, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize store", zap.Error(err))
	}
	a.closers = append(a.closers, func() {
		if err := st.Close(context.Background()); err != nil {
			appLogger.Error("Failed to close store", logger.ErrorField(err))
		}
	})

	// Initialize run lock
	locker := service.NewNopLocker()
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Redis", zap.Error(err))
		}
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
		locker = redis.NewLocker(redisClient.Client, common.RunLockPrefix)
	}

	// Initialize notifier
	notifier := telegram.NewNopNotifier()
	if cfg.Telegram.Enabled {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", zap.Error(err))
		}
	}

	// Initialize strategies
	strategies := []strategy.JobExecutionStrategy{
		strategy.NewFeedIngestionStrategy(cfg, appLogger, st.News, classifier.Default()),
		strategy.NewNewsEnrichmentStrategy(cfg, appLogger, st.News, aiRepo),
	}

	a.executor = service.NewExecutorService(
		st.Runs,
		locker,
		notifier,
		appLogger,
		service.ExecutorOptions{RunTimeout: cfg.Executor.RunTimeout, LockTTL: cfg.Executor.LockTTL},
		strategies,
	)
	return a
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := bootstrap(ctx)
	defer a.Close()

	scheduler := service.NewSchedulerService(a.executor, a.logger)
	if err := scheduler.Register(
		service.Schedule{Spec: a.cfg.Ingestion.Schedule, JobType: entity.JobTypeFeedIngestion},
		service.Schedule{Spec: a.cfg.Enrichment.Schedule, JobType: entity.JobTypeNewsEnrichment},
	); err != nil {
		a.logger.Fatal("Failed to register schedules", logger.ErrorField(err))
	}
	scheduler.Start(ctx)

	a.logger.Info("Execution service started. Waiting for schedules...")
	<-ctx.Done()

	a.logger.Info("Shutting down execution service...")
	scheduler.Stop()
	a.logger.Info("Execution service stopped.")
}

func runOnce(jobType entity.JobType) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := bootstrap(ctx)
	defer a.Close()

	history, err := a.executor.Run(ctx, &entity.Job{Type: jobType})
	if err != nil {
		a.logger.Error("Run failed", logger.ErrorField(err), logger.StringField("job_type", string(jobType)))
		a.Close()
		os.Exit(1)
	}
	if history != nil && len(history.Output) > 0 {
		fmt.Println(string(history.Output))
	}
}

func main() {
	rootCmd := &cobra.Command{Use: "execution-service"}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-executor.yaml", "Path to the configuration file")

	runCmd.AddCommand(ingestCmd, enrichCmd)
	rootCmd.AddCommand(serveCmd, runCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing execution-service CLI: %s\n", err)
		os.Exit(1)
	}
}
