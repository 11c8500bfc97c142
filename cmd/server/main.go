package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/resume-screener/api/handlers"
	"github.com/feichai0017/resume-screener/api/routes"
	cfg "github.com/feichai0017/resume-screener/config"
	"github.com/feichai0017/resume-screener/internal/enrich"
	"github.com/feichai0017/resume-screener/internal/extract"
	"github.com/feichai0017/resume-screener/internal/index"
	"github.com/feichai0017/resume-screener/internal/pipeline"
	"github.com/feichai0017/resume-screener/internal/service/resume"
	"github.com/feichai0017/resume-screener/pkg/logger"
	"github.com/feichai0017/resume-screener/pkg/queue"
	"github.com/feichai0017/resume-screener/pkg/storage"
	"github.com/feichai0017/resume-screener/pkg/store"
	badgerstore "github.com/feichai0017/resume-screener/pkg/store/badger"
	redisstore "github.com/feichai0017/resume-screener/pkg/store/redis"
)

func main() {
	// init logger
	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/app.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	conf, err := cfg.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", logger.Error(err))
	}

	// raw document storage
	stg, err := storage.NewStorage(conf.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize storage", logger.Error(err))
	}

	// record store
	recordStore, err := newRecordStore(conf.Store, log)
	if err != nil {
		log.Fatal("Failed to initialize record store", logger.Error(err))
	}
	defer recordStore.Close()

	// vector index
	embedder, err := index.NewOpenAIEmbedder(conf.Embedding, log)
	if err != nil {
		log.Fatal("Failed to initialize embedder", logger.Error(err))
	}
	idx, err := newIndex(conf.Index, embedder, log)
	if err != nil {
		log.Fatal("Failed to initialize index", logger.Error(err))
	}
	defer idx.Close()

	// pipeline stages
	extractor := extract.NewPDFExtractor(stg, log)
	enricher, err := enrich.NewLLMEnricher(conf.LLM, log)
	if err != nil {
		log.Fatal("Failed to initialize enricher", logger.Error(err))
	}
	pipe := pipeline.New(recordStore, extractor, enricher, idx, log)

	// queue: redis-backed asynq when configured, in-process pool otherwise
	q, err := newQueue(conf.Queue, pipe.Run, log)
	if err != nil {
		log.Fatal("Failed to initialize queue", logger.Error(err))
	}
	defer q.Close()

	svc := resume.NewService(stg, recordStore, idx, q, log, &resume.ServiceConfig{
		MaxFileSize:  conf.Upload.MaxFileSizeMB * 1024 * 1024,
		AllowedTypes: []string{".pdf"},
	})

	h := handlers.NewHandlers(svc, log)
	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, h)

	srv := &http.Server{
		Addr:    conf.Server.Addr,
		Handler: r,
	}

	// start server
	go func() {
		log.Info("Server starting", logger.String("addr", conf.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", logger.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", logger.Error(err))
	}
}

func newRecordStore(c cfg.StoreConfig, log logger.Logger) (store.RecordStore, error) {
	switch c.Backend {
	case "badger", "":
		return badgerstore.NewRecordStore(c, log)
	case "redis":
		return redisstore.NewRecordStore(c, log)
	default:
		return nil, errors.New("unsupported store backend: " + c.Backend)
	}
}

func newIndex(c cfg.IndexConfig, embedder index.Embedder, log logger.Logger) (index.Index, error) {
	if c.RedisAddr != "" {
		return index.NewRedisIndex(c, embedder, log)
	}
	return index.NewBadgerIndex(c, embedder, log)
}

func newQueue(c cfg.QueueConfig, handler queue.Handler, log logger.Logger) (queue.Queue, error) {
	if c.RedisAddr != "" {
		return queue.NewAsynqQueue(c, log)
	}
	return queue.NewLocalQueue(c.Concurrency, handler, log)
}
