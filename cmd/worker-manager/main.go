// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"bdmatch-workers/internal/common/auth"
	"bdmatch-workers/internal/common/aws"
	"bdmatch-workers/internal/common/camunda"
	"bdmatch-workers/internal/common/config"
	"bdmatch-workers/internal/common/database"
	"bdmatch-workers/internal/common/logger"
	"bdmatch-workers/internal/common/observability"
	"bdmatch-workers/internal/matching"
	"bdmatch-workers/internal/store"

	// Matching Workers (3)
	ccm "bdmatch-workers/internal/workers/matching/calculate-company-match"
	cpm "bdmatch-workers/internal/workers/matching/calculate-partner-match"
	dc "bdmatch-workers/internal/workers/matching/discover-candidates"

	// EOI Lifecycle Workers (7)
	ce "bdmatch-workers/internal/workers/eoi/create-eoi"
	xe "bdmatch-workers/internal/workers/eoi/expire-eois"
	re "bdmatch-workers/internal/workers/eoi/respond-eoi"
	so "bdmatch-workers/internal/workers/eoi/search-open-eois"
	se "bdmatch-workers/internal/workers/eoi/send-eoi"
	ue "bdmatch-workers/internal/workers/eoi/update-eoi"
	we "bdmatch-workers/internal/workers/eoi/withdraw-eoi"

	// Communication Workers (1)
	sen "bdmatch-workers/internal/workers/communication/send-eoi-notification"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Camunda Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Camunda client initialization")

	if err != nil {
		zapLog.Fatal("camunda client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Camunda client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	// Discovery falls back to Postgres enumeration without it, and only
	// search-open-eois hard-requires it, so a dead cluster degrades the
	// service instead of killing it.
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 5, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		esClient = nil
		zapLog.Warn("elasticsearch unavailable, continuing with Postgres-only discovery", zap.Error(err))
	} else {
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init External Service Clients ---
	keycloak := auth.NewKeycloakClient(
		cfg.Auth.Keycloak.URL,
		cfg.Auth.Keycloak.Realm,
		cfg.Auth.Keycloak.ClientID,
		cfg.Auth.Keycloak.ClientSecret,
	)

	var emailSender sen.EmailSender
	if sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region); err != nil {
		zapLog.Warn("SES client unavailable, email notifications will be skipped", zap.Error(err))
	} else {
		emailSender = sesClient
	}

	var smsSender sen.SMSSender
	if snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region); err != nil {
		zapLog.Warn("SNS client unavailable, SMS notifications will be skipped", zap.Error(err))
	} else {
		smsSender = snsClient
	}

	zapLog.Info("All external service clients initialized")

	// --- Stores & Domain Services ---
	profileTTL := time.Duration(cfg.Matching.ProfileCacheTTL) * time.Second
	profiles := store.NewProfileStore(pg.DB, redis, log, profileTTL)
	requirements := store.NewRequirementStore(pg.DB, log)
	preferences := store.NewPreferenceStore(pg.DB, log)
	scores := store.NewScoreStore(pg.DB, log)
	eois := store.NewEoiStore(pg.DB, log)
	communications := store.NewCommunicationStore(pg.DB, log)
	identity := store.NewIdentityResolver(keycloak, profiles)
	agg := matching.NewAggregator(matching.NewCalculator(nil),
		matching.WithValidity(time.Duration(cfg.Matching.ScoreValidityDays)*24*time.Hour))

	var running []*camunda.CamundaWorker

	// --- 1. Matching Workers (3) ---
	if wc := cfg.Workers[cpm.TaskType]; wc.Enabled {
		c := cpm.LoadConfig()
		c.Timeout = time.Duration(wc.Timeout) * time.Millisecond
		handler := cpm.NewHandler(c, profiles, requirements, scores, agg, log)
		running = append(running, startWorker(zeebeClient, cpm.TaskType, wc, handler, zapLog))
	}

	if wc := cfg.Workers[ccm.TaskType]; wc.Enabled {
		c := ccm.LoadConfig()
		c.Timeout = time.Duration(wc.Timeout) * time.Millisecond
		handler := ccm.NewHandler(c, profiles, preferences, scores, agg, log)
		running = append(running, startWorker(zeebeClient, ccm.TaskType, wc, handler, zapLog))
	}

	if wc := cfg.Workers[dc.TaskType]; wc.Enabled {
		c := dc.LoadConfigFrom(cfg.Matching)
		c.Timeout = time.Duration(wc.Timeout) * time.Millisecond
		handler := dc.NewHandler(c, profiles, requirements, scores, agg, esClient, log)
		running = append(running, startWorker(zeebeClient, dc.TaskType, wc, handler, zapLog))
	}

	// --- 2. EOI Lifecycle Workers (7) ---
	if wc := cfg.Workers[ce.TaskType]; wc.Enabled {
		c := ce.LoadConfigFrom(cfg.Eoi)
		c.Timeout = time.Duration(wc.Timeout) * time.Millisecond
		handler := ce.NewHandler(c, identity, profiles, eois, camundaClient, log)
		running = append(running, startWorker(zeebeClient, ce.TaskType, wc, handler, zapLog))
	}

	if wc := cfg.Workers[se.TaskType]; wc.Enabled {
		c := se.LoadConfigFrom(cfg.Eoi)
		c.Timeout = time.Duration(wc.Timeout) * time.Millisecond
		handler := se.NewHandler(c, identity, eois, camundaClient, log)
		running = append(running, startWorker(zeebeClient, se.TaskType, wc, handler, zapLog))
	}

	if wc := cfg.Workers[ue.TaskType]; wc.Enabled {
		c := ue.LoadConfig()
		c.Timeout = time.Duration(wc.Timeout) * time.Millisecond
		handler := ue.NewHandler(c, identity, eois, log)
		running = append(running, startWorker(zeebeClient, ue.TaskType, wc, handler, zapLog))
	}

	if wc := cfg.Workers[re.TaskType]; wc.Enabled {
		c := re.LoadConfigFrom(cfg.Eoi)
		c.Timeout = time.Duration(wc.Timeout) * time.Millisecond
		handler := re.NewHandler(c, identity, profiles, eois, communications, log)
		running = append(running, startWorker(zeebeClient, re.TaskType, wc, handler, zapLog))
	}

	if wc := cfg.Workers[we.TaskType]; wc.Enabled {
		c := we.LoadConfig()
		c.Timeout = time.Duration(wc.Timeout) * time.Millisecond
		handler := we.NewHandler(c, identity, eois, log)
		running = append(running, startWorker(zeebeClient, we.TaskType, wc, handler, zapLog))
	}

	if wc := cfg.Workers[xe.TaskType]; wc.Enabled {
		c := xe.LoadConfig()
		c.Timeout = time.Duration(wc.Timeout) * time.Millisecond
		handler := xe.NewHandler(c, eois, log)
		running = append(running, startWorker(zeebeClient, xe.TaskType, wc, handler, zapLog))
	}

	if wc := cfg.Workers[so.TaskType]; wc.Enabled {
		c := so.LoadConfig()
		c.Timeout = time.Duration(wc.Timeout) * time.Millisecond
		handler := so.NewHandler(c, esClient, log)
		running = append(running, startWorker(zeebeClient, so.TaskType, wc, handler, zapLog))
	}

	// --- 3. Communication Workers (1) ---
	if wc := cfg.Workers[sen.TaskType]; wc.Enabled {
		c := sen.LoadConfigFrom(cfg.Notifications)
		c.Timeout = time.Duration(wc.Timeout) * time.Millisecond
		service := sen.NewService(c, emailSender, smsSender, log)
		handler := sen.NewHandler(c, service, log)
		running = append(running, startWorker(zeebeClient, sen.TaskType, wc, handler, zapLog))
	}

	zapLog.Info("Worker registration complete", zap.Int("workers", len(running)))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range running {
		w.Stop(shutdownCtx)
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Camunda client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler camunda.JobHandler, log *zap.Logger) *camunda.CamundaWorker {
	w := camunda.NewWorker(client, taskType, wcfg.MaxJobsActive, handler, log)
	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
	return w
}
