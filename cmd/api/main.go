package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	cloudstorage "cloud.google.com/go/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/marwari-basket/api/internal/di"
	"github.com/marwari-basket/api/internal/handlers"
	"github.com/marwari-basket/api/internal/platform/auth"
	"github.com/marwari-basket/api/internal/platform/config"
	pfirestore "github.com/marwari-basket/api/internal/platform/firestore"
	"github.com/marwari-basket/api/internal/platform/jobs"
	"github.com/marwari-basket/api/internal/platform/observability"
	"github.com/marwari-basket/api/internal/platform/secrets"
	platformstorage "github.com/marwari-basket/api/internal/platform/storage"
	"github.com/marwari-basket/api/internal/repositories"
	firestoreRepo "github.com/marwari-basket/api/internal/repositories/firestore"
	"github.com/marwari-basket/api/internal/services"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		os.Stderr.WriteString("failed to initialise logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	envValues, err := config.EnvironmentValues()
	if err != nil {
		logger.Fatal("failed to read environment values", zap.Error(err))
	}

	fetcher, err := secrets.NewFetcher(ctx,
		secrets.WithLogger(logger.Named("secrets")),
		secrets.WithDefaultProject(envValues["API_FIREBASE_PROJECT_ID"]),
	)
	if err != nil {
		logger.Fatal("failed to initialise secret fetcher", zap.Error(err))
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("secret fetcher close error", zap.Error(err))
		}
	}()

	cfg, err := config.Load(ctx, config.WithSecretResolver(fetcher))
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	firestoreClient, err := firestoreProvider.Client(ctx)
	if err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := firestoreProvider.Close(closeCtx); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	orderRepo, err := firestoreRepo.NewOrderRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise order repository", zap.Error(err))
	}

	var eventPublisher services.OrderEventPublisher
	var eventsTopic *pubsub.Topic
	if cfg.PubSub.ProjectID != "" && cfg.PubSub.OrderEventsTopic != "" {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			logger.Fatal("failed to initialise pubsub client", zap.Error(err))
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logger.Warn("pubsub close error", zap.Error(err))
			}
		}()

		eventsTopic = pubsubClient.Topic(cfg.PubSub.OrderEventsTopic)
		publisher, err := jobs.NewPubSubOrderEventPublisher(eventsTopic)
		if err != nil {
			logger.Fatal("failed to initialise order event publisher", zap.Error(err))
		}
		eventPublisher = publisher
	} else {
		logger.Warn("order events disabled; pubsub project or topic not configured")
	}

	var artifactStore services.ArtifactStore
	if cfg.Storage.ExportsBucket != "" {
		storageClient, err := cloudstorage.NewClient(ctx)
		if err != nil {
			logger.Fatal("failed to initialise storage client", zap.Error(err))
		}
		defer func() {
			if err := storageClient.Close(); err != nil {
				logger.Warn("storage close error", zap.Error(err))
			}
		}()

		var signer platformstorage.Signer
		if strings.TrimSpace(cfg.Storage.SignerKey) != "" {
			accountSigner, err := platformstorage.NewServiceAccountSigner(cfg.Storage.SignerEmail, cfg.Storage.SignerKey)
			if err != nil {
				logger.Fatal("failed to parse storage signer key", zap.Error(err))
			}
			signer = accountSigner
		}

		writer, err := platformstorage.NewArtifactWriter(storageClient, cfg.Storage.ExportsBucket, signer,
			platformstorage.WithArtifactURLTTL(cfg.Storage.ExportURLTTL),
		)
		if err != nil {
			logger.Fatal("failed to initialise artifact writer", zap.Error(err))
		}
		artifactStore = writer
	} else {
		logger.Warn("bulk export artifacts disabled; exports bucket not configured")
	}

	healthRepo, err := repositories.NewDependencyHealthRepository([]repositories.DependencyCheck{
		{
			Name: "firestore",
			Check: func(checkCtx context.Context) error {
				iter := firestoreClient.Collections(checkCtx)
				if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
					return err
				}
				return nil
			},
		},
	})
	if err != nil {
		logger.Fatal("failed to initialise health repository", zap.Error(err))
	}

	firebaseVerifier, err := auth.NewFirebaseVerifier(ctx, cfg.Firebase)
	if err != nil {
		logger.Fatal("failed to initialise firebase verifier", zap.Error(err))
	}
	authenticator := auth.NewAuthenticator(firebaseVerifier)

	container, err := di.NewContainer(di.Dependencies{
		Config:    cfg,
		Orders:    orderRepo,
		Health:    healthRepo,
		Events:    eventPublisher,
		Artifacts: artifactStore,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("failed to assemble services", zap.Error(err))
	}

	pageOpts := container.PaginationOptions()
	orderHandlers := handlers.NewOrderHandlers(authenticator, container.Services.Orders, pageOpts)
	adminOrderHandlers := handlers.NewAdminOrderHandlers(authenticator, container.Services.Orders, container.Services.Bulk, pageOpts)
	adminCustomerHandlers := handlers.NewAdminCustomerHandlers(authenticator, container.Services.Orders)

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthRepository(container.Health),
		handlers.WithHealthEnvironment(cfg.Security.Environment),
	)

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(),
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithOrderRoutes(orderHandlers.Routes),
		handlers.WithAdminRoutes(func(r chi.Router) {
			r.Group(adminOrderHandlers.Routes)
			r.Group(adminCustomerHandlers.Routes)
		}),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("marwari-basket api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	if eventsTopic != nil {
		eventsTopic.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
