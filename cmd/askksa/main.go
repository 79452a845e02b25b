// Package main is the AskKSA CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/askksa/askksa/internal/cli"
	"github.com/askksa/askksa/internal/config"
	"github.com/askksa/askksa/internal/embedding"
	"github.com/askksa/askksa/internal/ingest"
	"github.com/askksa/askksa/internal/keyword"
	"github.com/askksa/askksa/internal/llm"
	"github.com/askksa/askksa/internal/models"
	"github.com/askksa/askksa/internal/rag"
	"github.com/askksa/askksa/internal/server"
	"github.com/askksa/askksa/internal/storage"
	"github.com/askksa/askksa/internal/vector"
	"github.com/askksa/askksa/internal/watcher"
	"github.com/askksa/askksa/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/askksa/config.yaml"

// loadConfig loads config from path. When path is the default, a config.yaml
// in the current directory takes precedence so development runs pick up the
// project config.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "ingest":
		runIngest()
	case "search":
		runSearch()
	case "delete":
		runDelete()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("askksa version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedPath),
		zap.Bool("debug", debugMode))

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	generator, err := llm.NewGeminiGenerator(context.Background(), cfg.Generation.Model)
	if err != nil {
		logger.Fatal("Failed to initialize generator", zap.Error(err))
	}
	defer generator.Close()
	engine := rag.NewEngine(components.Retriever, generator, cfg.Chat.MaxHistoryTurns, logger)

	srv := server.NewServer(engine, components.Ingestor, components.Storage, components.KeywordIndex, cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Corpus.Watch && cfg.Corpus.Directory != "" {
		ing := components.Ingestor
		watchOpts := []watcher.Option{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		w := watcher.NewWatcher(
			cfg.Corpus.Directory,
			cfg.Corpus.Extensions,
			func(path string) {
				if _, err := ing.IngestFile(context.Background(), path); err != nil {
					logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
				}
			},
			func(path string) {
				if err := ing.RemoveFile(context.Background(), path); err != nil {
					logger.Warn("watch remove failed", zap.String("path", path), zap.Error(err))
				}
			},
			watchOpts...,
		)
		if err := w.Start(ctx); err != nil {
			logger.Fatal("Failed to start corpus watcher", zap.Error(err))
		}
		defer w.Stop()
		logger.Info("corpus watcher started", zap.String("directory", cfg.Corpus.Directory))
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		logger.Fatal("Server stopped", zap.Error(err))
	case sig := <-sigCh:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warn("Shutdown error", zap.Error(err))
	}
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	k := fs.Int("k", 0, "number of chunks to retrieve (default from config)")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: askksa ask [flags] <question>")
		os.Exit(1)
	}
	query := fs.Arg(0)

	cfg, logger, components := mustInitialize(*configPath)
	defer components.Close()
	defer logger.Sync()

	generator, err := llm.NewGeminiGenerator(context.Background(), cfg.Generation.Model)
	if err != nil {
		fmt.Printf("Failed to initialize generator: %v\n", err)
		os.Exit(1)
	}
	defer generator.Close()
	engine := rag.NewEngine(components.Retriever, generator, cfg.Chat.MaxHistoryTurns, logger)

	req := models.AskRequest{Query: query, K: *k}
	if err := req.Validate(cfg.Chat.DefaultK, cfg.Chat.MaxK); err != nil {
		fmt.Printf("Invalid question: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	answer, isRTL, results, err := engine.Answer(context.Background(), req.Query, nil, req.K)
	if err != nil {
		fmt.Printf("Answer failed: %v\n", err)
		os.Exit(1)
	}
	resp := &models.AskResponse{
		Answer:      answer,
		IsRTL:       isRTL,
		Results:     results,
		QueryTimeMS: time.Since(start).Milliseconds(),
	}
	if err := cli.WriteAskResponse(os.Stdout, resp, cli.OutputFormat(*output)); err != nil {
		fmt.Printf("Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: askksa ingest [flags] <file-or-directory>")
		os.Exit(1)
	}
	target := fs.Arg(0)

	_, logger, components := mustInitialize(*configPath)
	defer components.Close()
	defer logger.Sync()

	info, err := os.Stat(target)
	if err != nil {
		fmt.Printf("Cannot read %s: %v\n", target, err)
		os.Exit(1)
	}
	ctx := context.Background()
	if info.IsDir() {
		n, err := components.Ingestor.IngestDirectory(ctx, target)
		if err != nil {
			fmt.Printf("Ingest failed after %d files: %v\n", n, err)
			os.Exit(1)
		}
		fmt.Printf("Ingested %d files from %s\n", n, target)
	} else {
		id, err := components.Ingestor.IngestFile(ctx, target)
		if err != nil {
			fmt.Printf("Ingest failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Ingested article: %s\n", id)
	}
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	limit := fs.Int("limit", 20, "maximum number of hits")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: askksa search [flags] <query>")
		os.Exit(1)
	}
	query := fs.Arg(0)

	_, logger, components := mustInitialize(*configPath)
	defer components.Close()
	defer logger.Sync()

	hits, err := components.KeywordIndex.Search(context.Background(), query, *limit)
	if err != nil {
		fmt.Printf("Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteKeywordResults(os.Stdout, query, hits, cli.OutputFormat(*output)); err != nil {
		fmt.Printf("Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: askksa delete [flags] <article-id>")
		os.Exit(1)
	}
	articleID := fs.Arg(0)

	_, logger, components := mustInitialize(*configPath)
	defer components.Close()
	defer logger.Sync()

	if err := components.Ingestor.DeleteArticle(context.Background(), articleID); err != nil {
		fmt.Printf("Deletion failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Article deleted: %s\n", articleID)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, components := mustInitialize(*configPath)
	defer components.Close()
	defer logger.Sync()

	ctx := context.Background()
	articles, err := components.Storage.CountArticles(ctx)
	if err != nil {
		fmt.Printf("Status failed: %v\n", err)
		os.Exit(1)
	}
	chunks, err := components.Storage.CountChunks(ctx)
	if err != nil {
		fmt.Printf("Status failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Articles: %d\nChunks: %d\nVectors: %d\n", articles, chunks, components.VectorIndex.Size())
	fmt.Printf("Embedding: %s (%d dims)\nGeneration model: %s\n",
		cfg.Embedding.Provider, cfg.Embedding.Dimensions, cfg.Generation.Model)
}

func mustInitialize(configPath string) (*config.Config, *zap.Logger, *Components) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	return cfg, logger, components
}

// Components holds initialized services. Everything is constructed up front
// so a missing model or index fails at startup, not on first use.
type Components struct {
	Storage      storage.Storage
	Embedder     embedding.Embedder
	VectorIndex  *vector.FlatIndex
	KeywordIndex keyword.Index
	Retriever    *rag.Retriever
	Ingestor     *ingest.Ingestor

	vectorIndexPath string
	logger          *zap.Logger
}

func (c *Components) Close() {
	if c.VectorIndex != nil {
		if c.vectorIndexPath != "" {
			if err := c.VectorIndex.Save(c.vectorIndexPath); err != nil && c.logger != nil {
				c.logger.Warn("failed to save vector index", zap.Error(err))
			}
		}
		_ = c.VectorIndex.Close()
	}
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	embedder, err := embedding.New(&cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	vectorIndex, err := vector.NewFlatIndex(cfg.Embedding.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}
	if cfg.Storage.VectorIndexPath != "" {
		if err := vectorIndex.Load(cfg.Storage.VectorIndexPath); err != nil {
			return nil, fmt.Errorf("failed to load vector index: %w", err)
		}
	}
	logger.Info("vector index loaded", zap.Int("vectors", vectorIndex.Size()))

	keywordIndex, err := keyword.NewBleveIndex(cfg.Storage.KeywordIndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}

	retriever := rag.NewRetriever(embedder, vectorIndex, store, logger)

	ingOpts := []ingest.Option{}
	if debug {
		ingOpts = append(ingOpts, ingest.WithLogger(logger))
	}
	ingestor := ingest.NewIngestor(store, embedder, vectorIndex, keywordIndex, &cfg.Corpus, ingOpts...)

	return &Components{
		Storage:         store,
		Embedder:        embedder,
		VectorIndex:     vectorIndex,
		KeywordIndex:    keywordIndex,
		Retriever:       retriever,
		Ingestor:        ingestor,
		vectorIndexPath: cfg.Storage.VectorIndexPath,
		logger:          logger,
	}, nil
}

func printUsage() {
	fmt.Println(`askksa - Grounded Q&A over Saudi visa and Iqama articles

Usage:
  askksa server [flags]             Start the HTTP server
  askksa ask [flags] <question>     Ask a question (English or Urdu)
  askksa ingest [flags] <path>      Ingest a corpus file or directory
  askksa search [flags] <query>     Keyword search over articles
  askksa delete [flags] <id>        Delete an article
  askksa status [flags]             Show storage and index status
  askksa version                    Show version
  askksa help                       Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/askksa/config.yaml)

Server Flags:
  --debug            Enable debug logging

Ask Flags:
  --k int            Number of chunks to retrieve (default from config)
  --output string    Output format: text or json (default: text)

Search Flags:
  --limit int        Maximum number of hits (default: 20)
  --output string    Output format: text or json (default: text)

The generation call requires GEMINI_API_KEY (or GOOGLE_API_KEY) in the
environment.

Examples:
  askksa server
  askksa ingest ./corpus
  askksa ask "What are the requirements for premium residency?"
  askksa ask "اقامہ کی تجدید کا طریقہ کار کیا ہے؟"
  askksa search iqama
  askksa status`)
}
