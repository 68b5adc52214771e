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
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/poiesic/spansearch"
	"github.com/poiesic/spansearch/config"
	"github.com/poiesic/spansearch/index"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load()
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "spansearch",
		Usage: "Windowed multi-granularity search over text, files and web pages",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				Value:   config.DefaultPath,
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "Index cache directory (overrides storage.path)",
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Index cache backend, badger or fs (overrides storage.backend)",
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Embedding service host URL",
			},
			&cli.StringFlag{
				Name:  "generator-host",
				Usage: "Generator service host URL",
			},
			&cli.StringFlag{
				Name:  "query-model",
				Usage: "Query embedding model name",
			},
			&cli.StringFlag{
				Name:  "passage-model",
				Usage: "Passage embedding model name",
			},
			&cli.StringFlag{
				Name:  "generator-model",
				Usage: "Generator model name",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Score every unit of a corpus against a query and print the selected units",
				ArgsUsage: "CORPUS (text, path or URL; - reads stdin)",
				Action:    searchCommand,
				Flags:     requestFlags(),
			},
			{
				Name:      "qa",
				Usage:     "Answer a question from the units a search selects",
				ArgsUsage: "CORPUS (text, path or URL; - reads stdin)",
				Action:    qaCommand,
				Flags: append(requestFlags(),
					&cli.IntFlag{
						Name:  "max-tokens",
						Usage: "Maximum answer length in tokens (0 leaves it to the model)",
						Value: 512,
					},
				),
			},
			{
				Name:      "address",
				Usage:     "Print the content address a corpus would be cached under",
				ArgsUsage: "CORPUS",
				Action:    addressCommand,
				Flags:     corpusFlags(),
			},
			{
				Name:      "ingest",
				Usage:     "Build the indexes of several corpora ahead of search",
				ArgsUsage: "CORPUS...",
				Action:    ingestCommand,
				Flags: append(corpusFlags(),
					&cli.StringFlag{
						Name:  "glob",
						Usage: "Also ingest every file under --root matching this pattern (e.g. **/*.md)",
					},
					&cli.StringFlag{
						Name:  "root",
						Usage: "Directory the --glob pattern is matched in",
						Value: ".",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of corpora prepared concurrently (0 uses half the CPUs)",
					},
				),
			},
			{
				Name:  "cache",
				Usage: "Inspect the index cache",
				Subcommands: []*cli.Command{
					{
						Name:   "ls",
						Usage:  "List cached indexes",
						Action: cacheListCommand,
					},
					{
						Name:      "rm",
						Usage:     "Remove cached indexes",
						ArgsUsage: "ADDRESS...",
						Action:    cacheRemoveCommand,
					},
				},
			},
		},
	}
}

func corpusFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "source",
			Aliases: []string{"s"},
			Usage:   "Corpus source type (text, file, web)",
		},
		&cli.StringFlag{
			Name:    "granularity",
			Aliases: []string{"g"},
			Usage:   "Unit granularity (word, sentence, paragraph)",
		},
		&cli.StringFlag{
			Name:    "window-sizes",
			Aliases: []string{"w"},
			Usage:   `Space separated window sizes, e.g. "1 2 3"`,
		},
	}
}

func requestFlags() []cli.Flag {
	return append(corpusFlags(),
		&cli.StringFlag{
			Name:     "query",
			Aliases:  []string{"q"},
			Usage:    "Query to score the corpus against",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "retriever",
			Aliases: []string{"r"},
			Usage:   "Retriever (dense, sparse, hybrid)",
		},
		&cli.IntFlag{
			Name:  "retriever-top-k",
			Usage: "Spans scored by the retriever (0 scores every span)",
		},
		&cli.BoolFlag{
			Name:  "ranker",
			Usage: "Rescore retrieved spans with the configured ranker model",
		},
		&cli.IntFlag{
			Name:  "ranker-top-k",
			Usage: "Ranked spans kept for aggregation (0 keeps every span)",
		},
		&cli.Float64Flag{
			Name:    "percentage",
			Aliases: []string{"p"},
			Usage:   "Select this fraction of the units, in [0,1]",
		},
		&cli.IntFlag{
			Name:    "top-k",
			Aliases: []string{"k"},
			Usage:   "Select this many units",
		},
	)
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

// loadConfig reads the configuration file and applies the global flags on top.
func loadConfig(c *cli.Context) (*config.File, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrides := []struct {
		flag   string
		target *string
	}{
		{"store", &cfg.Storage.Path},
		{"backend", &cfg.Storage.Backend},
		{"embedding-host", &cfg.AI.EmbeddingHost},
		{"generator-host", &cfg.AI.GeneratorHost},
		{"query-model", &cfg.AI.QueryModel},
		{"passage-model", &cfg.AI.PassageModel},
		{"generator-model", &cfg.AI.GeneratorModel},
	}
	for _, o := range overrides {
		if c.IsSet(o.flag) {
			*o.target = c.String(o.flag)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openEngine is replaced in tests.
var openEngine = func(cfg *config.File) (*spansearch.Engine, error) {
	indexOptions := []index.Option{
		index.WithBatchSize(cfg.Index.BatchSize),
		index.WithProgress(os.Stderr),
	}
	if cfg.Index.PoolSize > 0 {
		indexOptions = append(indexOptions, index.WithPoolSize(cfg.Index.PoolSize))
	}
	return spansearch.OpenEngine(cfg.Storage.Path,
		spansearch.WithAIConfig(cfg.ToAIConfig()),
		spansearch.WithBackend(cfg.Storage.Backend),
		spansearch.WithIndexOptions(indexOptions...),
	)
}
