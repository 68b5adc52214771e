package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/poiesic/spansearch/answer"
	"github.com/poiesic/spansearch/config"
	"github.com/poiesic/spansearch/core"
	"github.com/poiesic/spansearch/ingestion"
	"github.com/poiesic/spansearch/search"
	"github.com/poiesic/spansearch/selection"
	"github.com/urfave/cli/v2"
)

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	req, err := buildRequest(c, cfg)
	if err != nil {
		return err
	}

	engine, err := openEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	resp, err := engine.Search(ctx, req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	renderSearch(c.App.Writer, req, resp)
	return nil
}

func qaCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	req, err := buildRequest(c, cfg)
	if err != nil {
		return err
	}

	engine, err := openEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	qa, err := engine.NewQA()
	if err != nil {
		return err
	}
	resp, err := qa.Answer(ctx, answer.Request{Request: req, MaxTokens: c.Int("max-tokens")})
	if err != nil {
		return fmt.Errorf("answering failed: %w", err)
	}
	renderAnswer(c.App.Writer, resp)
	return nil
}

func addressCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	req, err := buildCorpusRequest(c, cfg)
	if err != nil {
		return err
	}
	corpus, err := readCorpus(c, req.SourceType)
	if err != nil {
		return err
	}
	req.Corpus = corpus

	engine, err := openEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	fmt.Fprintln(c.App.Writer, engine.Searcher().Address(req))
	return nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	base, err := buildCorpusRequest(c, cfg)
	if err != nil {
		return err
	}

	var reqs []search.Request
	for _, corpus := range c.Args().Slice() {
		req := base
		req.Corpus = corpus
		reqs = append(reqs, req)
	}
	if pattern := c.String("glob"); pattern != "" {
		paths, err := globFiles(c.String("root"), pattern)
		if err != nil {
			return err
		}
		for _, path := range paths {
			req := base
			req.Corpus = path
			req.SourceType = core.SourceFile
			reqs = append(reqs, req)
		}
	}
	if len(reqs) == 0 {
		return errors.New("nothing to ingest: pass corpora or --glob")
	}

	engine, err := openEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	var opts []ingestion.Option
	if workers := c.Int("workers"); workers > 0 {
		opts = append(opts, ingestion.WithPoolSize(workers))
	}
	pipeline, err := engine.NewIngestionPipeline(opts...)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	results := pipeline.Ingest(ctx, reqs...)
	renderIngest(c.App.Writer, results)
	for _, r := range results {
		if r.Err != nil {
			return errors.New("some corpora failed to ingest")
		}
	}
	return nil
}

func cacheListCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	configs, err := engine.Indexes(ctx)
	if err != nil {
		return err
	}
	renderIndexes(c.App.Writer, configs)
	return nil
}

func cacheRemoveCommand(c *cli.Context) error {
	ctx := context.Background()
	if c.NArg() == 0 {
		return errors.New("at least one address is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	for _, address := range c.Args().Slice() {
		if err := engine.DeleteIndex(ctx, core.Address(address)); err != nil {
			return fmt.Errorf("failed to remove %s: %w", address, err)
		}
		fmt.Fprintf(c.App.Writer, "removed %s\n", address)
	}
	return nil
}

// buildCorpusRequest fills the corpus description from flags, falling back
// to the configuration file.
func buildCorpusRequest(c *cli.Context, cfg *config.File) (search.Request, error) {
	var req search.Request
	var err error

	req.SourceType, err = core.ParseSourceType(flagOr(c, "source", cfg.Search.SourceType))
	if err != nil {
		return req, err
	}
	req.Granularity, err = core.ParseGranularity(flagOr(c, "granularity", cfg.Search.Granularity))
	if err != nil {
		return req, err
	}
	req.WindowSizes = flagOr(c, "window-sizes", cfg.Search.WindowSizes)
	return req, nil
}

// buildRequest builds a complete search request from flags, the corpus
// argument and the configuration file.
func buildRequest(c *cli.Context, cfg *config.File) (search.Request, error) {
	req, err := buildCorpusRequest(c, cfg)
	if err != nil {
		return req, err
	}

	req.Corpus, err = readCorpus(c, req.SourceType)
	if err != nil {
		return req, err
	}
	req.Query = c.String("query")

	req.Retriever, err = core.ParseRetrieverKind(flagOr(c, "retriever", cfg.Search.Retriever))
	if err != nil {
		return req, err
	}
	req.RetrieverTopK = cfg.Search.RetrieverTopK
	if c.IsSet("retriever-top-k") {
		req.RetrieverTopK = c.Int("retriever-top-k")
	}
	req.Ranker = cfg.Search.Ranker
	if c.IsSet("ranker") {
		req.Ranker = c.Bool("ranker")
	}
	req.RankerTopK = cfg.Search.RankerTopK
	if c.IsSet("ranker-top-k") {
		req.RankerTopK = c.Int("ranker-top-k")
	}

	switch {
	case c.IsSet("top-k") && c.IsSet("percentage"):
		return req, fmt.Errorf("%w: --top-k and --percentage are exclusive", core.ErrUnsupportedConfiguration)
	case c.IsSet("top-k"):
		req.Policy, err = selection.ParsePolicy("top_k", float64(c.Int("top-k")))
	case c.IsSet("percentage"):
		req.Policy, err = selection.ParsePolicy("percentage", c.Float64("percentage"))
	default:
		req.Policy, err = selection.ParsePolicy(cfg.Search.Policy, cfg.Search.PolicyValue)
	}
	return req, err
}

// readCorpus returns the corpus argument. Text corpora may span several
// arguments; "-" or no argument reads the text from the app's reader.
func readCorpus(c *cli.Context, source core.SourceType) (string, error) {
	args := c.Args().Slice()
	if source != core.SourceText {
		if len(args) != 1 {
			return "", fmt.Errorf("expected exactly one %s corpus, got %d", source, len(args))
		}
		return args[0], nil
	}
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		reader := c.App.Reader
		if reader == nil {
			reader = os.Stdin
		}
		data, err := io.ReadAll(reader)
		if err != nil {
			return "", fmt.Errorf("failed to read corpus: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

// globFiles returns the regular files under root matching pattern.
func globFiles(root, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, rel := range matches {
		full := filepath.Join(root, rel)
		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			continue
		}
		paths = append(paths, full)
	}
	return paths, nil
}

func flagOr(c *cli.Context, name, fallback string) string {
	if c.IsSet(name) {
		return c.String(name)
	}
	return fallback
}
