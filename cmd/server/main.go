package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quotechain/internal/advisor"
	"quotechain/internal/bot"
	"quotechain/internal/cache"
	"quotechain/internal/config"
	"quotechain/internal/db"
	"quotechain/internal/handler"
	"quotechain/internal/job"
	"quotechain/internal/provider"
	"quotechain/internal/repository"
	"quotechain/internal/service"
	"quotechain/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "quotechain/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initPostgresFunc       = db.InitPostgres
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	buildResolverFunc      = buildResolver
	newQuoteServiceFunc    = service.NewQuoteService
	newQuotePollerFunc     = job.NewQuotePoller
	startPollerFunc        = func(p *job.QuotePoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Quotechain API
// @version         1.0
// @description     Ranked multi-source market data resolver with cross-validation.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	initPostgresFunc(ctx, cfg.DatabaseURL)
	initRedisFunc(ctx, cfg.RedisURL)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create repositories and run migrations
	var historyRepo *repository.QuoteHistoryRepository
	var convRepo *repository.ConversationRepository
	if db.Pool != nil {
		historyRepo = repository.NewQuoteHistoryRepository(db.Pool, tracer)
		convRepo = repository.NewConversationRepository(db.Pool, tracer)
		if err := historyRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		if err := convRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Build the provider chains and resolver
	var lastQuotes provider.LastQuoteStore
	if historyRepo != nil {
		lastQuotes = historyRepo
	}
	res, err := buildResolverFunc(cfg, tracer, lastQuotes)
	if err != nil {
		log.Fatalf("failed to build resolver: %v", err)
	}

	var history service.HistoryRepository
	if historyRepo != nil {
		history = historyRepo
	}
	quoteService := newQuoteServiceFunc(tracer, res, history, cache.Client)

	// Start quote poller (background goroutines, stopped by ctx cancel)
	poller := newQuotePollerFunc(tracer, quoteService, cfg.QuotePollSecs)
	startPollerFunc(poller, ctx)

	// Advisor needs both an API key and a conversation store
	var adv bot.Advisor
	if cfg.OpenAIAPIKey != "" && convRepo != nil {
		adv = advisor.NewAdvisorService(
			tracer,
			advisor.NewOpenAIClient(cfg.OpenAIAPIKey),
			quoteService,
			convRepo,
			cfg.OpenAIModel,
			cfg.AdvisorMaxHistory,
		)
	}

	// Start Telegram bot
	startTelegramBotFunc(cfg.TelegramBotToken, quoteService, adv)

	// Create handlers and routes
	h := newHandlerFunc(tracer, quoteService)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("quotechain"))

	h.RegisterRoutes(r, cfg.APIKey)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
