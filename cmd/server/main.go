package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"planner-backend-go/internal/api"
	"planner-backend-go/internal/config"
	"planner-backend-go/internal/core"
	"planner-backend-go/internal/db"
	"planner-backend-go/internal/export"
	"planner-backend-go/internal/identity"
	"planner-backend-go/internal/middleware"
	"planner-backend-go/internal/ratelimit"
	"planner-backend-go/internal/scheduler"
	"planner-backend-go/internal/session"
	"planner-backend-go/internal/storage"
	"planner-backend-go/internal/workflow"
)

const chromeRenderTimeout = 60 * time.Second

func main() {
	// .env is a development convenience only.
	if !strings.EqualFold(os.Getenv("GIN_MODE"), "release") {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("Failed to load .env: %v", err)
		}
	}

	// --- 1. Configuration and logger ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	var zapLogger *zap.Logger
	if appConfig.IsRelease() {
		zapLogger, err = zap.NewProduction()
	} else {
		zapLogger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// --- 2. Firebase Admin SDK (Firestore, Auth) ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	if err := db.InitFirestore(initCtx, appConfig, zapLogger); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firestore and Firebase Admin SDK", zap.Error(err))
	}
	defer db.CloseFirestore()
	firestoreClient := db.GetFirestoreClient()

	identities, err := identity.NewProvider(initCtx, db.GetFirebaseAuthClient(), appConfig.FirebaseWebAPIKey)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize identity provider", zap.Error(err))
	}

	// --- 3. Redis-backed sessions and rate limits, or in-process fallbacks ---
	var (
		sessionStore session.Store
		apiLimiter   ratelimit.Limiter
		authLimiter  ratelimit.Limiter
	)
	if appConfig.RedisURL != "" {
		redisClient, err := connectRedis(initCtx, appConfig.RedisURL)
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		sessionStore = session.NewRedisStoreWithClient(redisClient)
		apiLimiter = ratelimit.NewRedisLimiter(redisClient, "api", appConfig.RateLimitMax, appConfig.RateLimitWindow)
		authLimiter = ratelimit.NewRedisLimiter(redisClient, "auth", appConfig.AuthRateLimitMax, appConfig.RateLimitWindow)
		zapLogger.Info("Using Redis for sessions and rate limits")
	} else {
		sessionStore = session.NewMemoryStore()
		apiLimiter = ratelimit.NewMemoryLimiter(appConfig.RateLimitMax, appConfig.RateLimitWindow)
		authLimiter = ratelimit.NewMemoryLimiter(appConfig.AuthRateLimitMax, appConfig.RateLimitWindow)
		zapLogger.Warn("REDIS_URL not set; sessions and rate limits are kept in process memory")
	}
	tokens := session.NewManager(appConfig.JWTSecret, appConfig.JWTAccessTTL, appConfig.JWTRefreshTTL, sessionStore)

	// --- 4. Object storage and PDF rendering ---
	var objects core.ObjectStore
	switch appConfig.StorageDriver {
	case config.StorageDriverMinio:
		objects, err = storage.NewMinioStore(initCtx, appConfig.MinioEndpoint, appConfig.MinioAccessKey,
			appConfig.MinioSecretKey, appConfig.MinioBucket, appConfig.MinioUseSSL)
	default:
		objects, err = storage.NewFirebaseStore(initCtx, db.GetFirebaseApp())
	}
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize object storage", zap.Error(err), zap.String("driver", appConfig.StorageDriver))
	}

	var renderer core.PDFRenderer
	if appConfig.PDFRenderer == config.PDFRendererChrome {
		renderer = export.NewChromeRenderer(chromeRenderTimeout)
	}

	flows := workflow.NewClient(appConfig.N8NBaseURL, appConfig.N8NAPIKey, zapLogger)

	// --- 5. Repositories and services ---
	userRepo := db.NewFirestoreUserRepository(firestoreClient)
	plannerRepo := db.NewFirestorePlannerRepository(firestoreClient)
	sectionRepo := db.NewFirestoreSectionRepository(firestoreClient)
	shareRepo := db.NewFirestoreShareRepository(firestoreClient)
	activityRepo := db.NewFirestoreActivityRepository(firestoreClient)
	chatRepo := db.NewFirestoreChatRepository(firestoreClient)
	exportRepo := db.NewFirestoreExportRepository(firestoreClient)
	handwritingRepo := db.NewFirestoreHandwritingRepository(firestoreClient)

	background := core.NewBestEffort(zapLogger)
	guard := core.NewAccessGuard(plannerRepo, shareRepo, sectionRepo)
	activityService := core.NewActivityService(activityRepo, guard, zapLogger)
	exportService := core.NewExportService(exportRepo, sectionRepo, guard, activityService, flows, objects, renderer, background, zapLogger)

	services := api.Services{
		Auth:        core.NewAuthService(userRepo, identities, tokens, background, zapLogger),
		Planners:    core.NewPlannerService(plannerRepo, sectionRepo, guard, activityService, zapLogger),
		Sections:    core.NewSectionService(sectionRepo, guard, activityService, zapLogger),
		Sharing:     core.NewSharingService(shareRepo, plannerRepo, userRepo, guard, activityService, flows, background, zapLogger),
		Activity:    activityService,
		AI:          core.NewAIService(sectionRepo, chatRepo, guard, activityService, flows, zapLogger),
		Export:      exportService,
		Handwriting: core.NewHandwritingService(handwritingRepo, guard, flows, objects, zapLogger),
	}

	// --- 6. Scheduled jobs ---
	jobs := scheduler.New(zapLogger)
	if _, err := jobs.SweepStaleExports(exportService, appConfig.ExportSweepInterval, appConfig.ExportStaleAfter); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to schedule stale export sweep", zap.Error(err))
	}
	jobs.Start()

	// --- 7. HTTP engine ---
	if appConfig.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig.ClientURL))

	api.SetupRoutes(router, services, api.RouteMiddleware{
		Auth:      middleware.NewAuthMiddleware(tokens, identities, zapLogger),
		APILimit:  middleware.RateLimit(apiLimiter, middleware.APILimitMessage, zapLogger),
		AuthLimit: middleware.RateLimit(authLimiter, middleware.AuthLimitMessage, zapLogger),
	}, zapLogger)

	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		zapLogger.Info("Starting HTTP server", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 8. Graceful shutdown ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	jobs.Stop()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Best-effort tasks such as share notifications may still be in flight.
	background.Wait()
	zapLogger.Info("Server exiting gracefully")
}

func connectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
