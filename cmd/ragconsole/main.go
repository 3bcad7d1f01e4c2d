// ragconsole ingests local documents and opens an interactive
// nearest-neighbor search console. It runs fully offline using the local
// hashing embedder.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"ragserver/internal/chunker"
	"ragserver/internal/config"
	"ragserver/internal/embedding/hashing"
	"ragserver/internal/service"
	"ragserver/internal/summarizer"
	"ragserver/internal/tui"
	"ragserver/internal/vectorstore/memory"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional)")
	flag.Parse()
	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Println("Usage: ragconsole [--config=config.yaml] file1.txt [file2.pdf ...]")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	emb := hashing.NewEmbedder(cfg.Embedder.Dimension)
	svc := service.New(
		chunker.NewSentenceChunker(cfg.Chunker.ChunkSize, cfg.Chunker.Overlap),
		emb,
		memory.NewIndex(emb.Dimension()),
		summarizer.NewFrequencySummarizer(),
		cfg.Summarizer.MaxSentences,
	)

	ctx := context.Background()
	var lines []string
	for _, path := range inputs {
		report, err := svc.IngestFile(ctx, path)
		if err != nil {
			log.Fatalf("ingest %s failed: %v", path, err)
		}
		lines = append(lines, fmt.Sprintf("%s: %d/%d chunks", report.DocumentName, report.SuccessCount, report.ChunkCount))
	}

	m := tui.New(svc, strings.Join(lines, "  "))
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
