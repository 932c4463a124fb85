package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/vango-dev/dropzone/internal/config"
	"github.com/vango-dev/dropzone/internal/errors"
	"github.com/vango-dev/dropzone/pkg/middleware"
	"github.com/vango-dev/dropzone/pkg/server"
	"github.com/vango-dev/dropzone/pkg/upload"
	"github.com/vango-dev/dropzone/pkg/widget"
)

func serveCmd(load loadFunc) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload form",
		Long: `Serve the upload form until interrupted.

Endpoints:
  GET  /                 upload page
  GET  /_dz/ws           widget session (WebSocket)
  POST /upload/stage     stage a selected file
  POST /submit           accept a staged file
  GET  /metrics          Prometheus metrics (when enabled)
  GET  /healthz          liveness

Examples:
  dropzone serve
  dropzone serve --addr=:9000
  DROPZONE_STORE_TYPE=s3 DROPZONE_STORE_S3_BUCKET=uploads dropzone serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, newLogger(cfg, os.Stderr))
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")

	return cmd
}

// app is the wired server with its storage.
type app struct {
	server  *server.Server
	store   upload.Store
	janitor *upload.Janitor
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	a, err := newApp(ctx, cfg, middleware.NewMetrics(), logger)
	if err != nil {
		return err
	}

	go a.janitor.Run(ctx)

	if err := a.server.ListenAndServe(ctx); err != nil {
		return errors.New("DZ301").Wrap(err)
	}
	return nil
}

func newApp(ctx context.Context, cfg *config.Config, metrics *middleware.Metrics, logger *slog.Logger) (*app, error) {
	var s3Client *s3.Client
	if cfg.Store.Type == config.StoreS3 || cfg.Sink.Type == config.SinkS3 {
		client, err := upload.NewS3Client(ctx, upload.S3Options{
			Region:       cfg.Store.S3.Region,
			BaseEndpoint: cfg.Store.S3.Endpoint,
			AccessKey:    cfg.Store.S3.AccessKey,
			SecretKey:    cfg.Store.S3.SecretKey,
			UsePathStyle: cfg.Store.S3.PathStyle,
		})
		if err != nil {
			return nil, errors.New("DZ202").Wrap(err)
		}
		s3Client = client
	}

	store, err := newStore(cfg, s3Client)
	if err != nil {
		return nil, err
	}
	sink, err := newSink(cfg, s3Client)
	if err != nil {
		return nil, err
	}

	mws := []server.Middleware{metrics.Middleware()}
	if cfg.Tracing.Enabled {
		var opts []middleware.OTelOption
		if cfg.Tracing.TracerName != "" {
			opts = append(opts, middleware.WithTracerName(cfg.Tracing.TracerName))
		}
		mws = append(mws, middleware.OpenTelemetry(opts...))
	}

	rules := widget.DefaultRules()
	rules.MaxSize = cfg.MaxFileSize()

	srv := server.New(&server.ServerConfig{
		Address:         cfg.Server.Addr,
		Title:           cfg.Server.Title,
		Rules:           rules,
		Labels:          widget.Labels{Submit: cfg.Upload.SubmitLabel, Loading: cfg.Upload.LoadingLabel},
		CheckOrigin:     server.AllowOrigins(cfg.Server.AllowedOrigins...),
		MaxSessions:     cfg.Server.MaxSessions,
		ShutdownTimeout: cfg.ShutdownTimeout(),
		Files:           upload.NewResolver(store),
		Middleware:      mws,
		Observer:        metrics,
		WidgetObserver:  metrics,
	}, logger)

	ucfg := &upload.Config{
		MaxFileSize: cfg.MaxFileSize(),
		SuccessURL:  cfg.Upload.SuccessURL,
		Logger:      logger,
		Observer:    metrics,
	}
	r := srv.Router()
	r.Handle(srv.Config().StagePath, upload.StageHandler(store, ucfg))
	r.Handle(srv.Config().SubmitPath, upload.SubmitHandler(store, sink, ucfg))
	if cfg.Metrics.Enabled {
		r.Method(http.MethodGet, cfg.Metrics.Path, metrics.Handler())
	}

	return &app{
		server: srv,
		store:  store,
		janitor: &upload.Janitor{
			Store:    store,
			Interval: cfg.CleanupInterval(),
			MaxAge:   cfg.MaxAge(),
			Logger:   logger,
		},
	}, nil
}

func newStore(cfg *config.Config, client *s3.Client) (upload.Store, error) {
	if cfg.Store.Type == config.StoreS3 {
		return upload.NewS3Store(client, cfg.Store.S3.Bucket, cfg.Store.S3.Prefix, cfg.MaxFileSize()), nil
	}
	store, err := upload.NewDiskStore(cfg.Store.Dir, cfg.MaxFileSize())
	if err != nil {
		return nil, errors.New("DZ201").
			WithDetail("Could not create " + cfg.Store.Dir).
			Wrap(err)
	}
	return store, nil
}

func newSink(cfg *config.Config, client *s3.Client) (upload.Sink, error) {
	if cfg.Sink.Type == config.SinkS3 {
		return upload.NewS3Sink(client, cfg.Store.S3.Bucket, cfg.Sink.Prefix), nil
	}
	sink, err := upload.NewDirSink(cfg.Sink.Dir)
	if err != nil {
		return nil, errors.New("DZ203").
			WithDetail("Could not create " + cfg.Sink.Dir).
			Wrap(err)
	}
	return sink, nil
}
