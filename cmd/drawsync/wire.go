package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/api/option"

	"github.com/vittaya051733-boop/tungtong1/internal/adapters/driven/blob/gcs"
	"github.com/vittaya051733-boop/tungtong1/internal/adapters/driven/blob/localfs"
	"github.com/vittaya051733-boop/tungtong1/internal/adapters/driven/config/file"
	prommetrics "github.com/vittaya051733-boop/tungtong1/internal/adapters/driven/metrics/prometheus"
	"github.com/vittaya051733-boop/tungtong1/internal/adapters/driven/ocr/vision"
	"github.com/vittaya051733-boop/tungtong1/internal/adapters/driven/storage/memory"
	"github.com/vittaya051733-boop/tungtong1/internal/adapters/driven/storage/sqlite"
	"github.com/vittaya051733-boop/tungtong1/internal/adapters/driving/cli"
	"github.com/vittaya051733-boop/tungtong1/internal/connectors/fetch"
	"github.com/vittaya051733-boop/tungtong1/internal/connectors/glo"
	"github.com/vittaya051733-boop/tungtong1/internal/connectors/google"
	"github.com/vittaya051733-boop/tungtong1/internal/connectors/mirror"
	"github.com/vittaya051733-boop/tungtong1/internal/connectors/webpage"
	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driven"
	"github.com/vittaya051733-boop/tungtong1/internal/core/services"
	"github.com/vittaya051733-boop/tungtong1/internal/logger"
	"github.com/vittaya051733-boop/tungtong1/internal/normalisers/pdf"
)

// build wires the adapters named by the configuration at path.
func build(ctx context.Context, path string) (*cli.Services, error) {
	cfg, err := file.Load(path)
	if err != nil {
		return nil, err
	}
	schema := domain.DefaultSchema()

	store, err := sqlite.NewStore(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	closeOnErr := func(err error) (*cli.Services, error) {
		_ = store.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := prommetrics.New(reg)

	blobs, recognizer, err := blobBackend(ctx, cfg)
	if err != nil {
		return closeOnErr(err)
	}

	api := glo.NewClient(cfg.Sources.GLO.BaseURL, fetchClient(cfg.Sources.GLO), schema)
	sources := services.Sources{
		API:      api,
		Official: api,
		Mirror:   mirror.NewClient(cfg.Sources.Mirror.BaseURL, fetchClient(cfg.Sources.Mirror)),
		Pages:    webpage.NewClient(cfg.Sources.Webpage.BaseURL, fetchClient(cfg.Sources.Webpage)),
	}

	text := pdf.New()
	if err := pdf.CheckAvailable(); err != nil {
		logger.Warn("%v; documents fall back to OCR\n%s", err, pdf.InstallInstructions())
	}

	var ocr *services.OCR
	if recognizer != nil {
		ocr = services.NewOCR(blobs, recognizer, metrics, cfg.OCR.MinTextLen)
	}

	svcCfg := services.DefaultConfig()
	svcCfg.Schema = schema

	reader := services.NewDocumentReader(schema, blobs, text, ocr, metrics)
	jobs := services.NewJobService(svcCfg, store.DrawStore(schema), blobs, sources, reader, metrics)

	schedCfg, err := cfg.SchedulerConfig()
	if err != nil {
		return closeOnErr(err)
	}

	return &cli.Services{
		Jobs:      jobs,
		Scheduler: services.NewScheduler(schedCfg, store.SchedulerStore(), jobs),
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Config:    cfg,
		Close:     store.Close,
	}, nil
}

// blobBackend returns the configured blob store and, when recognition is
// enabled, the recogniser. Cloud Vision reads and writes gs:// objects, so
// OCR needs the gcs backend.
func blobBackend(ctx context.Context, cfg *file.Config) (driven.BlobStore, driven.Recognizer, error) {
	switch cfg.Blob.Backend {
	case file.BlobGCS:
		opts, err := google.ClientOptions(ctx, cfg.Google.CredentialsFile, google.StorageScope, google.VisionScope)
		if err != nil {
			return nil, nil, fmt.Errorf("google credentials: %w", err)
		}
		blobs, err := gcsStore(ctx, cfg.Blob.Bucket, opts)
		if err != nil {
			return nil, nil, err
		}
		if !cfg.OCR.Enabled {
			return blobs, nil, nil
		}
		svc, err := google.NewVisionService(ctx, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("vision client: %w", err)
		}
		return blobs, vision.New(svc, cfg.OCR.PollInterval.Std()), nil

	case file.BlobMemory:
		warnNoOCR(cfg)
		return memory.NewBlobStore(), nil, nil

	default:
		warnNoOCR(cfg)
		dir := cfg.Blob.Dir
		if dir == "" {
			base, err := file.DefaultDir()
			if err != nil {
				return nil, nil, err
			}
			dir = filepath.Join(base, "blobs")
		}
		blobs, err := localfs.New(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("blob dir: %w", err)
		}
		return blobs, nil, nil
	}
}

func gcsStore(ctx context.Context, bucket string, opts []option.ClientOption) (*gcs.Store, error) {
	svc, err := google.NewStorageService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	return gcs.New(svc, bucket)
}

func warnNoOCR(cfg *file.Config) {
	if cfg.OCR.Enabled {
		logger.Debug("ocr needs the %s blob backend; recognition disabled", file.BlobGCS)
	}
}

func fetchClient(src file.SourceConfig) *fetch.Client {
	timeout := src.Timeout.Std()
	if timeout <= 0 {
		timeout = fetch.DefaultTimeout
	}
	limiter := fetch.NewRateLimiter(fetch.RateLimitConfig{
		RequestsPerSecond: src.RatePerSec,
		BurstSize:         src.Burst,
	})
	return fetch.NewClient(&http.Client{Timeout: timeout}, limiter)
}
