package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/eazyai/screener/internal/ai/gemini"
	"github.com/eazyai/screener/internal/logger"
	"github.com/eazyai/screener/internal/roles"
	"github.com/eazyai/screener/internal/screener"
	"github.com/eazyai/screener/internal/secrets"
	"github.com/eazyai/screener/internal/server"
	"github.com/eazyai/screener/internal/similarity"
	"github.com/eazyai/screener/internal/store"
)

const (
	defaultAddress  = ":8080"
	shutdownTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the screening HTTP server",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "listen address (default :8080)")
	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
}

func serve(_ *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the screener", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	generator, err := newGenerator(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building the ai generator", zap.Error(err))
	}

	runs, err := newRunStore(config.Store)
	if err != nil {
		logger.Fatal("opening the run store", zap.Error(err))
	}

	concurrency := 0
	if config.Screener != nil {
		concurrency = config.Screener.Concurrency
	}

	analyzer := screener.New(screener.Deps{
		Generator:   generator,
		Similarity:  similarity.New(generator, logger),
		Roles:       roles.New(generator, logger),
		Logger:      logger,
		Concurrency: concurrency,
	})

	address := defaultAddress
	if config.Server != nil && config.Server.Address != "" {
		address = config.Server.Address
	}
	if flagAddress := viper.GetString("server.address"); flagAddress != "" {
		address = flagAddress
	}

	srv := &http.Server{
		Addr:              address,
		Handler:           server.New(analyzer, runs, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("address", address))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown failed", zap.Error(err))
		}
	}

	if closer, ok := runs.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Warn("closing the run store", zap.Error(err))
		}
	}
}

func newGenerator(ctx context.Context, config *AIConfig, logger *zap.Logger) (*gemini.Generator, error) {
	if config == nil || config.Gemini == nil {
		return nil, fmt.Errorf("ai.gemini configuration is required")
	}

	provider := strings.TrimSpace(strings.ToLower(config.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", config.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	return gemini.NewGenerator(ctx, gemini.Config{
		APIKey:         apiKey,
		Model:          config.Gemini.Model,
		FastModel:      config.Gemini.FastModel,
		EmbeddingModel: config.Gemini.EmbeddingModel,
	}, logger)
}

func newRunStore(config *StoreConfig) (store.RunStore, error) {
	if config == nil || config.Path == "" {
		return store.NewMemory(), nil
	}
	return store.NewSQLite(config.Path)
}
