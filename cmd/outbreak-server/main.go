package main

import (
	"context"
	"flag"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/solflu/outbreak/pkg/api"
	"github.com/solflu/outbreak/pkg/broadcast"
	"github.com/solflu/outbreak/pkg/config"
	"github.com/solflu/outbreak/pkg/health"
	"github.com/solflu/outbreak/pkg/logging"
	"github.com/solflu/outbreak/pkg/metrics"
	"github.com/solflu/outbreak/pkg/orchestrator"
	"github.com/solflu/outbreak/pkg/scenario"
	"github.com/solflu/outbreak/pkg/server"
	"github.com/solflu/outbreak/pkg/translator"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(cfg.LogLevel))
	logger.Info("Outbreak server starting",
		logging.String("http_addr", cfg.HTTPAddr),
		logging.String("broadcast_addr", cfg.BroadcastAddr))

	registry := metrics.DefaultRegistry()

	// Optional market translator
	var translatorClient *translator.Client
	if cfg.TranslatorURL != "" {
		translatorClient = translator.NewClient(cfg.TranslatorURL, logger)
		translatorClient.SetFallbackHook(registry.RecordTranslatorFallback)
	}

	// Optional state broadcaster
	var publisher *broadcast.Publisher
	if cfg.BroadcastAddr != "" {
		publisher, err = broadcast.NewPublisher(cfg.BroadcastAddr, logger)
		if err != nil {
			log.Fatalf("Failed to open broadcast socket: %v", err)
		}
		defer publisher.Close()
	}

	orch := orchestrator.New(orchestrator.Options{
		StepInterval:   cfg.StepInterval,
		BroadcastEvery: cfg.BroadcastEvery,
		CacheTTL:       cfg.CacheTTL,
		MaxSessions:    cfg.MaxSessions,
		Translator:     translatorClient,
		Publisher:      publisher,
		Metrics:        registry,
		Logger:         logger,
	})
	defer orch.StopAll()

	// Preload a scenario into a fresh session when configured
	if cfg.ScenarioFile != "" {
		if err := preloadScenario(cfg.ScenarioFile, orch, logger); err != nil {
			log.Fatalf("Failed to preload scenario: %v", err)
		}
	}

	checker := buildHealthChecker(cfg, orch, translatorClient, publisher)

	apiServer := api.NewServer(orch, checker, registry, logger)

	httpServer := server.NewGracefulServer(cfg.HTTPAddr, apiServer.Handler(), logger)
	apiServer.StartSystemMetricsLoop(httpServer.ShutdownChannel())

	if err := httpServer.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func preloadScenario(path string, orch *orchestrator.Orchestrator, logger logging.Logger) error {
	world, err := scenario.Load(path)
	if err != nil {
		return err
	}

	session, err := orch.CreateSession()
	if err != nil {
		return err
	}
	if err := session.WithModel(world.Apply); err != nil {
		return err
	}

	logger.Info("Scenario preloaded",
		logging.String("scenario", world.Name),
		logging.SessionID(session.ID),
		logging.Int("countries", len(world.Countries)),
		logging.Int("routes", len(world.Routes)))
	return orch.StartSession(session.ID)
}

func buildHealthChecker(cfg *config.Config, orch *orchestrator.Orchestrator, translatorClient *translator.Client, publisher *broadcast.Publisher) *health.Checker {
	checker := health.NewChecker()

	loopCheck := health.SimulationLoopCheck(orch.LastSteps, 10*cfg.StepInterval)
	checker.RegisterCheck("simulation_loop", loopCheck)
	checker.RegisterLivenessCheck("simulation_loop", loopCheck)
	checker.RegisterReadinessCheck("simulation_loop", loopCheck)

	if publisher != nil {
		// Subscribers filter by session ID, so the probe topic reaches no one.
		broadcastCheck := health.BroadcastCheck(func() error {
			return publisher.Publish("health", []byte("ping"))
		})
		checker.RegisterCheck("broadcast", broadcastCheck)
		checker.RegisterReadinessCheck("broadcast", broadcastCheck)
	}

	if translatorClient != nil {
		checker.RegisterCheck("translator", health.TranslatorCheck(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return translatorClient.Ping(ctx)
		}))
	}

	checker.RegisterCheck("memory", health.MemoryCheck(func() (uint64, uint64) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return m.Alloc, m.Sys
	}))

	return checker
}
