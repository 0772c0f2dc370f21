package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/sopworks/sopflow/internal/audit"
	"github.com/sopworks/sopflow/internal/cache"
	"github.com/sopworks/sopflow/internal/compress"
	"github.com/sopworks/sopflow/internal/config"
	"github.com/sopworks/sopflow/internal/jobs"
	"github.com/sopworks/sopflow/internal/notify"
	"github.com/sopworks/sopflow/internal/service"
	"github.com/sopworks/sopflow/internal/store"
)

// Server represents the HTTP server
type Server struct {
	httpPort string
}

// NewServer creates a new server
func NewServer(httpPort string) *Server {
	return &Server{
		httpPort: httpPort,
	}
}

// Start starts the server
func (s *Server) Start() {
	if err := Start(s.httpPort); err != nil {
		logrus.Fatalf("error starting server: %v", err)
	}
}

// Start wires the store, sinks and service together and serves the HTTP API
// until interrupted.
func Start(httpPort string) error {
	cnf := config.LoadConfig()
	rdb := config.GetDb(cnf)

	docStore := store.NewGormStore(rdb)
	if err := docStore.Migrate(); err != nil {
		return err
	}

	var notifier notify.Sink = notify.NewLogSink()
	auditor := audit.NewStoreRecorder(docStore)

	opts := []service.Option{}
	if cnf.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cnf.RedisAddr})
		notifier = notify.NewRedisSink(client)
		opts = append(opts, service.WithDocumentCache(
			cache.NewRedisDocumentCache(client, compress.FromName(cnf.Compression)),
		))
	}

	svc := service.NewWorkingCopyService(docStore, notifier, auditor, opts...)

	executor := jobs.NewTaskExecutor(nil, []jobs.CronJob{
		jobs.NewReviewReminder("@every 1h", 24*time.Hour, docStore, notifier),
	})
	executor.Run()
	defer executor.Stop()

	handler := NewHandler(svc)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
	})

	httpServer := &http.Server{
		Addr:    ":" + httpPort,
		Handler: c.Handler(handler.Routes()),
	}

	go func() {
		logrus.Infof("starting http server at %v", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("http server failed: %v", err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	logrus.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
