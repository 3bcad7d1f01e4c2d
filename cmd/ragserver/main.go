package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ragserver/internal/chat"
	"ragserver/internal/chunker"
	"ragserver/internal/config"
	"ragserver/internal/domain"
	"ragserver/internal/embedding/hashing"
	"ragserver/internal/embedding/openai"
	"ragserver/internal/server"
	"ragserver/internal/service"
	"ragserver/internal/summarizer"
	"ragserver/internal/vectorstore/memory"
	"ragserver/internal/vectorstore/qdrant"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "ragserver",
	Short:         "Retrieval-augmented document search server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file (default: ./config.yaml, then ~/.config/ragserver/config.yaml)")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	svc, err := buildService(cfg)
	if err != nil {
		return err
	}
	providers := buildChatProviders(ctx, cfg)

	srv := server.New(server.Config{
		Service:        svc,
		Providers:      providers,
		CorpusPath:     cfg.Corpus.Path,
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Logger:         slog.Default(),
	})

	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Handler(),
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Server.Addr, "embedder", cfg.Embedder.Type)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func loadConfig() (*config.AppConfig, error) {
	if cfgPath != "" {
		return config.Load(cfgPath)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}

func buildService(cfg *config.AppConfig) (*service.Service, error) {
	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "hashing", "":
		emb = hashing.NewEmbedder(cfg.Embedder.Dimension)
	case "openai":
		oaiCfg := openai.Config{Dimension: cfg.Embedder.Dimension}
		if c := cfg.Embedder.OpenAI; c != nil {
			oaiCfg.BaseURL = c.BaseURL
			oaiCfg.APIKeyEnv = c.APIKeyEnv
			oaiCfg.Model = c.Model
			oaiCfg.Timeout = time.Duration(c.TimeoutSecs) * time.Second
		}
		client, err := openai.NewClient(oaiCfg)
		if err != nil {
			return nil, fmt.Errorf("openai embedder: %w", err)
		}
		emb = client
	default:
		return nil, fmt.Errorf("unknown embedder type: %s", cfg.Embedder.Type)
	}

	var index domain.VectorIndex
	switch cfg.VectorIndex.Type {
	case "memory", "":
		index = memory.NewIndex(emb.Dimension())
	case "qdrant":
		if cfg.VectorIndex.Qdrant == nil {
			return nil, errors.New("qdrant config missing")
		}
		q := cfg.VectorIndex.Qdrant
		ix, err := qdrant.NewIndex(qdrant.Config{
			URL:        q.URL,
			APIKey:     q.APIKey,
			Collection: q.Collection,
			Timeout:    time.Duration(q.TimeoutSecs) * time.Second,
		}, emb.Dimension())
		if err != nil {
			return nil, fmt.Errorf("qdrant index: %w", err)
		}
		index = ix
	default:
		return nil, fmt.Errorf("unknown vector index type: %s", cfg.VectorIndex.Type)
	}

	ch := chunker.NewSentenceChunker(cfg.Chunker.ChunkSize, cfg.Chunker.Overlap)
	sum := summarizer.NewFrequencySummarizer()
	return service.New(ch, emb, index, sum, cfg.Summarizer.MaxSentences), nil
}

// buildChatProviders sets up every provider whose API key is present; a
// missing key only disables that provider.
func buildChatProviders(ctx context.Context, cfg *config.AppConfig) map[string]chat.Provider {
	providers := map[string]chat.Provider{}

	oaiCfg := chat.OpenAIConfig{}
	if c := cfg.Chat.OpenAI; c != nil {
		oaiCfg.APIKeyEnv = c.APIKeyEnv
		oaiCfg.Model = c.Model
		oaiCfg.BaseURL = c.BaseURL
	}
	if p, err := chat.NewOpenAIProvider(oaiCfg); err != nil {
		slog.Warn("openai chat disabled", "error", err)
	} else {
		providers["openai"] = p
	}

	gemCfg := chat.GeminiConfig{}
	if c := cfg.Chat.Gemini; c != nil {
		gemCfg.APIKeyEnv = c.APIKeyEnv
		gemCfg.Model = c.Model
	}
	if p, err := chat.NewGeminiProvider(ctx, gemCfg); err != nil {
		slog.Warn("gemini chat disabled", "error", err)
	} else {
		providers["gemini"] = p
	}

	return providers
}
