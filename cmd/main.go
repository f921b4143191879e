package main

import (
	"context"
	"fmt"
	"illustrated-story-api/application/ports/outbound"
	"illustrated-story-api/application/services"
	"illustrated-story-api/config"
	"illustrated-story-api/infrastructure/adapters"
	"illustrated-story-api/infrastructure/gin_interface/controllers"
	"illustrated-story-api/infrastructure/metrics"
	"illustrated-story-api/middleware"
	mockgenerator "illustrated-story-api/mock"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatal().Err(err).Msg("Failed to load .env file")
	}

	serverConfig := config.GetServerConfig()

	pipelineConfig, err := config.GetPipelineConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get pipeline config")
	}

	zeroLogger := adapters.NewZerologWrapper(serverConfig.LogLevel, os.Stdout)

	panicHandler := func(p interface{}) {
		zeroLogger.Error(fmt.Errorf("%v", p), "Panic in worker pool")
	}

	workerPool, err := ants.NewPool(pipelineConfig.WorkerPoolSize, ants.WithPanicHandler(panicHandler))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create worker pool")
	}
	defer workerPool.Release()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New("story", registry)

	defaults := config.NewProviderDefaults(pipelineConfig)
	providerRegistry := services.NewProviderRegistry(defaults, buildProviders(pipelineConfig, defaults, zeroLogger)...)

	var itemOptions []services.ItemGeneratorOption
	if pipelineConfig.ArtifactOffload {
		if store := buildArtifactStore(zeroLogger); store != nil {
			itemOptions = append(itemOptions, services.WithArtifactStore(store))
		}
	}

	itemGenerator := services.NewItemGenerator(zeroLogger, providerRegistry, appMetrics, pipelineConfig.ItemTimeout, itemOptions...)

	batchSequencer := services.NewBatchSequencer(zeroLogger, workerPool, itemGenerator, pipelineConfig.MaxBatchSize, services.SleepContext)

	textGenerator := services.NewStoryTextGenerator(zeroLogger, providerRegistry, appMetrics, pipelineConfig.TextTimeout)

	mediaStage := services.NewMediaStageGenerator(zeroLogger, batchSequencer, providerRegistry, defaults, pipelineConfig)

	assembler := services.NewResultAssembler(time.Now)

	orchestrator := services.NewStoryPipelineOrchestrator(zeroLogger, workerPool, appMetrics, textGenerator, mediaStage, assembler)

	storyController := controllers.NewStoryController(zeroLogger, textGenerator, orchestrator)
	mediaController := controllers.NewMediaController(zeroLogger, mediaStage, pipelineConfig)
	healthController := controllers.NewHealthController(providerRegistry)

	router := gin.New()
	router.Use(gin.Recovery())

	err = router.SetTrustedProxies(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set trusted proxies!")
	}

	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(zeroLogger))
	router.Use(middleware.Metrics(appMetrics))

	if authConfig, err := config.GetAuthConfig(); err == nil {
		authHandler, err := middleware.NewAuthHandler(authConfig.JwksURL, zeroLogger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create auth handler!")
		}
		router.Use(authHandler.AuthMiddleware())
	} else {
		zeroLogger.Warn("JWKS_URL is not set, API runs without authentication")
	}

	controllers.RegisterFallbackHandlers(router)
	healthController.RegisterRoutes(router)
	storyController.RegisterRoutes(router)
	mediaController.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	zeroLogger.InfoWithFields("Starting server", map[string]interface{}{
		"address": serverConfig.Address,
	})
	err = router.Run(serverConfig.Address)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start server!")
	}
}

// buildProviders registers every provider whose configuration is complete.
// A missing credential only disables that provider.
func buildProviders(pipelineConfig *config.PipelineConfig, defaults *config.ProviderDefaults,
	logger outbound.LoggerPort) []outbound.ProviderPort {
	var providers []outbound.ProviderPort

	if pipelineConfig.MockProviders {
		mockConfig, err := config.GetMockConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to get mock config")
		}
		providers = append(providers, mockgenerator.Init(mockConfig, logger)...)
	}

	httpClient := &http.Client{}
	contentFetcher := adapters.NewContentFetcher(logger, httpClient)
	skip := func(provider string, err error) {
		logger.WarnWithFields("Provider disabled", map[string]interface{}{
			"provider": provider,
			"reason":   err.Error(),
		})
	}

	if geminiConfig, err := config.GetGeminiConfig(); err == nil {
		providers = append(providers, adapters.NewGeminiTextGenerator(contentFetcher, geminiConfig, logger))
	} else {
		skip(adapters.GeminiProviderName, err)
	}

	if gptConfig, err := config.GetGptConfig(); err == nil {
		providers = append(providers, adapters.NewChatTextGenerator(gptConfig, httpClient, logger))
	} else {
		skip(adapters.ChatProviderName, err)
	}

	if arkConfig, err := config.GetArkConfig(); err == nil {
		chatModel, err := adapters.NewArkChatModel(context.Background(), arkConfig, httpClient)
		if err != nil {
			skip(adapters.ArkProviderName, err)
		} else {
			providers = append(providers, adapters.NewArkTextGenerator(chatModel, logger))
		}
	} else {
		skip(adapters.ArkProviderName, err)
	}

	if replicateConfig, err := config.GetReplicateConfig(); err == nil {
		providers = append(providers, adapters.NewReplicateImageGenerator(contentFetcher, replicateConfig, defaults, logger))
	} else {
		skip(adapters.ReplicateProviderName, err)
	}

	if dalleConfig, err := config.GetDaLLeConfig(); err == nil {
		providers = append(providers, adapters.NewDalleImageGenerator(contentFetcher, dalleConfig, logger))
	} else {
		skip(adapters.DalleProviderName, err)
	}

	if elevenLabsConfig, err := config.GetElevenLabsConfig(); err == nil {
		providers = append(providers, adapters.NewAudioGenerator(contentFetcher, elevenLabsConfig, defaults, logger))
	} else {
		skip(adapters.ElevenLabsProviderName, err)
	}

	return providers
}

func buildArtifactStore(logger outbound.LoggerPort) outbound.ArtifactStorePort {
	s3Config, err := config.GetS3Config()
	if err != nil {
		logger.WarnWithFields("Artifact offload disabled", map[string]interface{}{
			"reason": err.Error(),
		})
		return nil
	}
	sess := session.Must(session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
		Config:            aws.Config{Region: aws.String(s3Config.Region)},
	}))
	return adapters.NewS3ArtifactStore(s3.New(sess), s3Config, logger)
}
