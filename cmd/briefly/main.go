// Command briefly is a sales and hiring assistant built on retrieval-augmented generation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/custodia-labs/briefly/internal/adapters/driven/ai"
	"github.com/custodia-labs/briefly/internal/adapters/driven/config/file"
	"github.com/custodia-labs/briefly/internal/adapters/driven/storage"
	"github.com/custodia-labs/briefly/internal/adapters/driving/cli"
	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/core/services"
	"github.com/custodia-labs/briefly/internal/logger"
	"github.com/custodia-labs/briefly/internal/normalisers/html"
	"github.com/custodia-labs/briefly/internal/normalisers/pdf"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(ctx); err != nil {
		os.Exit(1)
	}
}

// bootstrap wires adapters and services from the settings in configDir.
func bootstrap(ctx context.Context, configDir string) (*cli.Services, func(), error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, fmt.Errorf("get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".briefly")
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open config: %w", err)
	}
	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		return nil, nil, fmt.Errorf("open prompts: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}
	applyLocalDefaults(settings, configDir)
	logger.Redact(settings.LLM.APIKey, settings.Embedding.APIKey)

	aiResult := ai.Initialise(settings)
	for _, w := range aiResult.Warnings {
		logger.Warn("%s", w)
	}

	blobs, err := storage.NewBlobStore(ctx, settings.Storage)
	if err != nil {
		aiResult.Close()
		return nil, nil, err
	}
	items, err := storage.NewItemStore(ctx, settings.Items)
	if err != nil {
		aiResult.Close()
		return nil, nil, err
	}

	fetcher := html.NewFetcher(html.Config{
		Timeout:           time.Duration(settings.Web.TimeoutSeconds) * time.Second,
		MaxChars:          settings.Web.MaxChars,
		RequestsPerSecond: settings.Web.RequestsPerSecond,
	})

	extraction := services.NewExtractionService(pdf.New(), fetcher)
	overlap := settings.Retrieval.ChunkOverlap
	index := services.NewIndexService(blobs, aiResult.EmbeddingService, services.IndexConfig{
		Prefix:       settings.Storage.IndexPrefix,
		ChunkSize:    settings.Retrieval.ChunkSize,
		ChunkOverlap: &overlap,
	})
	chain := services.NewChainService(aiResult.LLMService, prompts, services.ChainConfig{
		TopK: settings.Retrieval.TopK,
	})
	compare := services.NewCompareService(aiResult.LLMService, prompts)
	sessions := services.NewSessionLogService(blobs, settings.Storage.SessionBasePath)
	interview := services.NewInterviewService(aiResult.LLMService, prompts, blobs, items)

	assistant := services.NewAssistantService(services.AssistantDeps{
		Extraction: extraction,
		Index:      index,
		Answers:    chain,
		Compare:    compare,
		Sessions:   sessions,
		Prompts:    prompts,
	}, settings.Retrieval.TopK)

	cleanup := func() {
		aiResult.Close()
		if err := items.Close(); err != nil {
			logger.Warn("close item store: %v", err)
		}
	}

	return &cli.Services{
		Settings:   settingsService,
		Extraction: extraction,
		Index:      index,
		Assistant:  assistant,
		Interview:  interview,
		Prompts:    prompts,
	}, cleanup, nil
}

// applyLocalDefaults roots local storage under configDir when no directory is set.
func applyLocalDefaults(settings *domain.AppSettings, configDir string) {
	if settings.Storage.Backend == domain.StorageBackendLocal && settings.Storage.Dir == "" {
		settings.Storage.Dir = filepath.Join(configDir, "data", "blobs")
	}
	if settings.Items.Backend == domain.ItemBackendSQLite && settings.Items.Dir == "" {
		settings.Items.Dir = filepath.Join(configDir, "data")
	}
}
