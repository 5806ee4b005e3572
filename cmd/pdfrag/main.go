// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/poiesic/pdfrag"
	"github.com/poiesic/pdfrag/chat"
	"github.com/poiesic/pdfrag/config"
	"github.com/poiesic/pdfrag/core"
	"github.com/poiesic/pdfrag/ingestion"
	"github.com/urfave/cli/v2"
)

// openEngine is replaced in tests to inject a mock provider.
var openEngine = func(ctx context.Context, cfg *config.Config) (*pdfrag.Engine, error) {
	return pdfrag.Open(ctx, cfg)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	// After the first interrupt, restore default handling so a second one
	// kills the process even if a call is stuck.
	context.AfterFunc(ctx, stop)

	if err := newApp(os.Stdin, os.Stdout).RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(in io.Reader, out io.Writer) *cli.App {
	return &cli.App{
		Name:   "pdfrag",
		Usage:  "Ask questions about a PDF using retrieval-augmented generation",
		Reader: in,
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Dotenv file loaded before reading the environment",
				Value: config.DefaultEnvFile,
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Split, embed and store the PDF named by PDF_PATH",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Report embedding progress on stderr",
					},
				},
			},
			{
				Name:   "chat",
				Usage:  "Answer questions from the ingested collection",
				Action: chatCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "k",
						Usage: "Number of chunks retrieved per question",
						Value: chat.DefaultK,
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Show the chunks retrieved for a query",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Query text",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "k",
						Usage: "Maximum number of hits",
						Value: chat.DefaultK,
					},
				},
			},
		},
	}
}

// loadConfig loads the environment and applies validate. Configuration
// problems are printed and reported as ok == false, so the command exits
// cleanly instead of failing.
func loadConfig(c *cli.Context, validate func(*config.Config) error) (*config.Config, bool) {
	cfg, err := config.Load(config.WithEnvFile(c.String("env-file")))
	if err == nil {
		err = validate(cfg)
	}
	if err != nil {
		fmt.Fprintf(c.App.Writer, "Erro: %v\n", err)
		return nil, false
	}
	return cfg, true
}

func ingestCommand(c *cli.Context) error {
	cfg, ok := loadConfig(c, (*config.Config).ValidateIngest)
	if !ok {
		return nil
	}

	engine, err := openEngine(c.Context, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	var opts []ingestion.Option
	if c.Bool("progress") {
		opts = append(opts, ingestion.WithProgress(os.Stderr))
	}
	pipeline, err := engine.NewIngestionPipeline(opts...)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	report, err := pipeline.Run(c.Context, cfg.PDFPath)
	switch {
	case errors.Is(err, ingestion.ErrNoDocuments):
		fmt.Fprintln(c.App.Writer, "No documents found in the PDF.")
		return nil
	case errors.Is(err, ingestion.ErrNoSplits):
		fmt.Fprintln(c.App.Writer, "No document splits created.")
		return nil
	case err != nil:
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "%d documents ingested successfully.\n", report.Chunks)
	return nil
}

func chatCommand(c *cli.Context) error {
	cfg, ok := loadConfig(c, (*config.Config).ValidateChat)
	if !ok {
		return nil
	}

	engine, err := openEngine(c.Context, cfg)
	if err != nil {
		fmt.Fprintln(c.App.Writer, "Não foi possível iniciar o chat. Verifique os erros de inicialização.")
		fmt.Fprintf(c.App.Writer, "Erro: %v\n", err)
		return nil
	}
	defer engine.Close()

	session, err := engine.NewSession(chat.WithK(c.Int("k")))
	if err == nil {
		err = engine.Connect(c.Context)
	}
	if err != nil {
		fmt.Fprintln(c.App.Writer, "Não foi possível iniciar o chat. Verifique os erros de inicialização.")
		fmt.Fprintf(c.App.Writer, "Erro: %v\n", err)
		return nil
	}

	err = session.Run(c.Context, c.App.Reader, c.App.Writer)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func searchCommand(c *cli.Context) error {
	cfg, ok := loadConfig(c, (*config.Config).ValidateChat)
	if !ok {
		return nil
	}

	engine, err := openEngine(c.Context, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	searcher, err := engine.NewSearcher()
	if err != nil {
		return err
	}

	results, err := searcher.FindSimilar(c.Context, c.String("query"), c.Int("k"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Fprintf(c.App.Writer, "%d: %s [%0.3f] page=%v\n    %s\n",
			i, hit.Chunk.ID, hit.Score, hit.Chunk.Metadata[core.MetadataPage], preview(hit.Chunk.Content, 120))
	}
	return nil
}

// preview flattens whitespace and truncates to max runes.
func preview(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
