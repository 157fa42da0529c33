package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/AnTengye/clausewise/config"
	"github.com/AnTengye/clausewise/handler"
	"github.com/AnTengye/clausewise/pkg/logger"
	"github.com/AnTengye/clausewise/router"
	"github.com/AnTengye/clausewise/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API.

Uploaded PDFs are stored in MinIO and extracted by MinerU; TXT and DOCX are
extracted locally. Both MinIO and MinerU are optional: without them only
TXT and DOCX uploads are accepted.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	slog.Info("configuration loaded", "config", cfgFile, "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := service.InitDocumentStore(cfg.Store)

	var storage service.ObjectStorage
	if cfg.Minio.Endpoint != "" {
		minioSvc, err := service.NewMinioService(&cfg.Minio)
		if err != nil {
			return fmt.Errorf("initialize minio: %w", err)
		}
		if err := minioSvc.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("ensure minio bucket: %w", err)
		}
		storage = minioSvc
	} else {
		slog.Warn("object storage not configured, PDF uploads disabled")
	}

	var pdf service.PDFExtractor
	var callbacks handler.CallbackParser
	if cfg.Mineru.APIURL != "" && storage != nil {
		mineruSvc := service.NewMineruService(&cfg.Mineru)
		pdf = mineruSvc
		if cfg.Mineru.CallbackURL != "" {
			callbacks = mineruSvc
		}
	}

	entities, simplifier := modelServices(cfg)
	analyzer := service.NewAnalyzer(&cfg.Analysis, entities)

	var generator service.Generator
	if cfg.Chat.Enabled {
		generator = service.NewOpenAIGenerator(&cfg.Chat)
	}
	slog.Info("services ready",
		"entities", entities.Name(),
		"models", cfg.Models.Enabled,
		"chat", cfg.Chat.Enabled,
		"pdf", pdf != nil,
		"callbacks", callbacks != nil,
	)

	processor := service.NewProcessor(ctx, store, pdf, analyzer, callbacks != nil)

	gin.SetMode(gin.ReleaseMode)
	engine := router.New(router.Deps{
		Config:     cfg,
		Store:      store,
		Storage:    storage,
		Callbacks:  callbacks,
		Processor:  processor,
		Analyzer:   analyzer,
		Simplifier: simplifier,
		Chat:       service.NewChatService(generator, cfg.Chat.HistoryWindow),
	})

	return serveHTTP(ctx, cfg, engine, processor)
}

func serveHTTP(ctx context.Context, cfg *config.Config, engine http.Handler, processor *service.Processor) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("start server: %w", err)
		}
	case <-ctx.Done():
	}
	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	processor.Wait()
	slog.Info("server exited gracefully")
	return nil
}
