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
	"strings"
	"time"

	"github.com/poiesic/vecspool"
	"github.com/poiesic/vecspool/ai"
	"github.com/poiesic/vecspool/build"
	"github.com/poiesic/vecspool/checkpoint"
	"github.com/poiesic/vecspool/ingestion"
	"github.com/poiesic/vecspool/recovery"
	"github.com/poiesic/vecspool/search"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "vecspool",
		Usage: "Build and search a resumable vector index over text documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Store each non-empty line of a text file as a document",
				Action: ingestCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Text file to ingest (- for stdin)",
						Value:   "-",
					},
					&cli.StringSliceFlag{
						Name:  "meta",
						Usage: "Metadata key=value attached to every document",
					},
				},
			},
			{
				Name:   "build",
				Usage:  "Embed all documents, resuming from a checkpoint when one exists",
				Action: buildCommand,
				Flags: append(append([]cli.Flag{dbFlag()}, embeddingFlags()...),
					checkpointDirFlag(),
					batchSizeFlag(),
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Number of sub-batches embedded at once",
						Value: build.DefaultConfig().Concurrency,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.StringFlag{
						Name:  "compression",
						Usage: "Checkpoint compression (none, lz4, zstd)",
						Value: "lz4",
					},
					&cli.BoolFlag{
						Name:  "sync",
						Usage: "Fsync the checkpoint after every batch",
					},
					&cli.BoolFlag{
						Name:  "keep-checkpoint",
						Usage: "Keep the checkpoint file after a successful build",
					},
					&cli.BoolFlag{
						Name:  "strict-recovery",
						Usage: "Fail when the checkpoint ends with a partial batch or holds a corrupt frame",
					},
				),
			},
			{
				Name:        "recover",
				Usage:       "Read a checkpoint through the recovery reader without building",
				Description: "Copies the checkpoint to <checkpoint-dir>/recovery, reads every batch and deletes the copy. The copy is shared with build, so do not run this while a build uses the same checkpoint directory.",
				Action:      recoverCommand,
				Flags: append(embeddingFlags(),
					checkpointDirFlag(),
					batchSizeFlag(),
					&cli.StringFlag{
						Name:  "vectors-id",
						Usage: "Checkpoint identifier (derived from the embedding flags if empty)",
					},
				),
			},
			{
				Name:   "status",
				Usage:  "Show the stored build state for an embedding configuration",
				Action: statusCommand,
				Flags:  append(append([]cli.Flag{dbFlag()}, embeddingFlags()...), batchSizeFlag()),
			},
			{
				Name:      "search",
				Usage:     "Find documents similar to a query",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: append(append([]cli.Flag{dbFlag()}, embeddingFlags()...),
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   5,
					},
					&cli.Float64Flag{
						Name:  "min-score",
						Usage: "Minimum cosine similarity",
						Value: 0.5,
					},
				),
			},
		},
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB database directory",
		Required: true,
	}
}

func checkpointDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "checkpoint-dir",
		Usage: "Directory holding build checkpoints",
		Value: "checkpoints",
	}
}

func batchSizeFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "batch-size",
		Usage: "Number of documents per batch",
		Value: build.DefaultBatchSize,
	}
}

func embeddingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "API token for the embedding service",
			EnvVars: []string{"VECSPOOL_TOKEN"},
		},
		&cli.Float64Flag{
			Name:  "requests-per-second",
			Usage: "Limit embedding requests per second (0 for no limit)",
		},
	}
}

func aiConfigFromFlags(c *cli.Context) (*ai.Config, error) {
	config := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithToken(c.String("token")),
		ai.WithRequestsPerSecond(c.Float64("requests-per-second")),
	)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return config, nil
}

// openDatabase opens the database named by --db. A nil aiConfig uses the defaults.
func openDatabase(c *cli.Context, aiConfig *ai.Config) (*vecspool.Database, error) {
	dbPath := c.String("db")
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := vecspool.NewDatabase(dbPath, vecspool.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// openDatabaseWithAI opens the database using the embedding flags.
func openDatabaseWithAI(c *cli.Context) (*vecspool.Database, error) {
	aiConfig, err := aiConfigFromFlags(c)
	if err != nil {
		return nil, err
	}
	return openDatabase(c, aiConfig)
}

func parseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	meta := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata %q: expected key=value", pair)
		}
		meta[key] = value
	}
	return meta, nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	meta, err := parseMetadata(c.StringSlice("meta"))
	if err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if path := c.String("file"); path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	db, err := openDatabase(c, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return err
	}

	result, err := pipeline.IngestReader(ctx, in, &ingestion.IngestOptions{Metadata: meta})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Read %d lines, added %d documents\n", result.Lines, result.Added)
	return nil
}

func buildConfigFromFlags(c *cli.Context) (*build.Config, error) {
	compression, err := checkpoint.ParseCompression(c.String("compression"))
	if err != nil {
		return nil, err
	}

	config := &build.Config{
		CheckpointDir:             c.String("checkpoint-dir"),
		BatchSize:                 c.Int("batch-size"),
		Concurrency:               c.Int("concurrency"),
		ReportInterval:            c.Int("report-interval"),
		MaxRetries:                c.Int("max-retries"),
		RetryDelay:                c.Duration("retry-delay"),
		Compression:               compression,
		SyncCheckpoint:            c.Bool("sync"),
		KeepCheckpoint:            c.Bool("keep-checkpoint"),
		TolerateDamagedCheckpoint: !c.Bool("strict-recovery"),
	}
	if config.ReportInterval <= 0 {
		return nil, fmt.Errorf("report-interval must be greater than 0")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func buildCommand(c *cli.Context) error {
	ctx := context.Background()

	config, err := buildConfigFromFlags(c)
	if err != nil {
		return err
	}

	db, err := openDatabaseWithAI(c)
	if err != nil {
		return err
	}
	defer db.Close()

	builder, err := db.NewBuilder(config, build.WithProgress(c.App.ErrWriter))
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", c.String("db"))
	fmt.Fprintf(c.App.ErrWriter, "Embedding host: %s\n", db.AIConfig().EmbeddingHost)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", db.AIConfig().EmbeddingModel)
	fmt.Fprintf(c.App.ErrWriter, "Checkpoint: %s\n", checkpoint.Path(config.CheckpointDir, builder.VectorsID()))
	fmt.Fprintln(c.App.ErrWriter)

	result, err := builder.Run(ctx)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Built %d documents in %d batches (%d recovered, %d embedded) in %v\n",
		result.Documents, result.Batches, result.Recovered, result.Embedded, result.Elapsed.Round(time.Millisecond))
	return nil
}

func vectorsIDFromFlags(c *cli.Context) (string, error) {
	if id := c.String("vectors-id"); id != "" {
		return id, nil
	}
	aiConfig, err := aiConfigFromFlags(c)
	if err != nil {
		return "", err
	}
	return checkpoint.VectorsID(aiConfig, fmt.Sprintf("batch=%d", c.Int("batch-size"))), nil
}

func recoverCommand(c *cli.Context) error {
	vectorsID, err := vectorsIDFromFlags(c)
	if err != nil {
		return err
	}
	dir := c.String("checkpoint-dir")

	reader, err := recovery.New(dir, vectorsID, checkpoint.Decode)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint: %w", err)
	}
	defer reader.Close()

	if !reader.Active() {
		fmt.Fprintf(c.App.Writer, "No checkpoint at %s\n", checkpoint.Path(dir, vectorsID))
		return nil
	}

	vectors, dims := 0, 0
	for {
		batch, err := reader.Next()
		if err != nil {
			fmt.Fprintf(c.App.Writer, "Recovered %d batches (%d vectors) before error\n", reader.Recovered(), vectors)
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return fmt.Errorf("checkpoint ends with a partial batch: %w", err)
			}
			return fmt.Errorf("checkpoint unreadable: %w", err)
		}
		if batch == nil {
			break
		}
		vectors += batch.Len()
		if dims == 0 {
			dims = batch.Dimensions()
		}
	}

	fmt.Fprintf(c.App.Writer, "Checkpoint %s: %d batches, %d vectors, %d dimensions\n",
		vectorsID, reader.Recovered(), vectors, dims)
	return nil
}

func statusCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabaseWithAI(c)
	if err != nil {
		return err
	}
	defer db.Close()

	count, err := db.DocumentRepository().CountDocuments(ctx)
	if err != nil {
		return err
	}

	vectorsID := checkpoint.VectorsID(db.AIConfig(), fmt.Sprintf("batch=%d", c.Int("batch-size")))
	state, err := db.BuildStateRepository().LoadBuildState(ctx, vectorsID)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Documents: %d\n", count)
	if state == nil {
		fmt.Fprintf(c.App.Writer, "Build %s: never run\n", vectorsID)
		return nil
	}

	status := "incomplete"
	if state.Completed {
		status = "complete"
	}
	fmt.Fprintf(c.App.Writer, "Build %s: %s, %d batches, %d documents, updated %s\n",
		vectorsID, status, state.Batches, state.Documents, state.UpdatedAt.Format(time.RFC3339))
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("query is required")
	}

	db, err := openDatabaseWithAI(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher(search.WithMinScore(float32(c.Float64("min-score"))))
	if err != nil {
		return err
	}

	results, err := searcher.FindSimilar(ctx, query, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Fprintf(c.App.Writer, "%d: '%s' (%d)[%0.3f]\n", i, hit.Document.Text, hit.Document.Id, hit.Score)
	}
	return nil
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
