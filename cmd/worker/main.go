package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cfg "github.com/feichai0017/resume-screener/config"
	"github.com/feichai0017/resume-screener/internal/enrich"
	"github.com/feichai0017/resume-screener/internal/extract"
	"github.com/feichai0017/resume-screener/internal/index"
	"github.com/feichai0017/resume-screener/internal/pipeline"
	"github.com/feichai0017/resume-screener/pkg/logger"
	"github.com/feichai0017/resume-screener/pkg/storage"
	redisstore "github.com/feichai0017/resume-screener/pkg/store/redis"
	"github.com/feichai0017/resume-screener/pkg/worker"
)

func main() {
	// init logger
	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/worker.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	conf, err := cfg.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", logger.Error(err))
	}

	// The worker is a separate process, so the embedded badger backends
	// cannot be shared with the server. Everything must sit in redis.
	if conf.Queue.RedisAddr == "" {
		log.Fatal("Worker requires QUEUE_REDIS_ADDR; the in-process queue runs inside the server binary")
	}
	if conf.Store.Backend != "redis" || conf.Store.RedisAddr == "" {
		log.Fatal("Worker requires the redis record store (STORE_BACKEND=redis, STORE_REDIS_ADDR)")
	}
	if conf.Index.RedisAddr == "" {
		log.Fatal("Worker requires the redis index (INDEX_REDIS_ADDR)")
	}

	stg, err := storage.NewStorage(conf.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize storage", logger.Error(err))
	}

	recordStore, err := redisstore.NewRecordStore(conf.Store, log)
	if err != nil {
		log.Fatal("Failed to initialize record store", logger.Error(err))
	}
	defer recordStore.Close()

	embedder, err := index.NewOpenAIEmbedder(conf.Embedding, log)
	if err != nil {
		log.Fatal("Failed to initialize embedder", logger.Error(err))
	}
	idx, err := index.NewRedisIndex(conf.Index, embedder, log)
	if err != nil {
		log.Fatal("Failed to initialize index", logger.Error(err))
	}
	defer idx.Close()

	extractor := extract.NewPDFExtractor(stg, log)
	enricher, err := enrich.NewLLMEnricher(conf.LLM, log)
	if err != nil {
		log.Fatal("Failed to initialize enricher", logger.Error(err))
	}
	pipe := pipeline.New(recordStore, extractor, enricher, idx, log)

	workerCfg := &worker.Config{
		RedisAddr:   conf.Queue.RedisAddr,
		RedisDB:     conf.Queue.RedisDB,
		Concurrency: conf.Queue.Concurrency,
		Queues: map[string]int{
			"default": 1,
		},
	}

	resumeWorker, err := worker.NewResumeWorker(workerCfg, pipe.Run, log)
	if err != nil {
		log.Fatal("Failed to create worker", logger.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := resumeWorker.Start(ctx); err != nil {
		log.Fatal("Failed to start worker", logger.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down worker...")
	resumeWorker.Stop()
	log.Info("Worker stopped")
}
