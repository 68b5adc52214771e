package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/poiesic/spansearch/answer"
	"github.com/poiesic/spansearch/core"
	"github.com/poiesic/spansearch/ingestion"
	"github.com/poiesic/spansearch/search"
	"github.com/poiesic/spansearch/window"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	answerStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func renderSearch(w io.Writer, req search.Request, resp *search.Response) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Selected %d of %d %s units", len(resp.Selected), len(resp.Units), req.Granularity)))

	summary := fmt.Sprintf("retriever=%s windows=%q policy=%s scored=%d duration=%s",
		req.Retriever, req.WindowSizes, req.Policy, len(resp.ScoredSpans), resp.Duration.Round(1e6))
	if req.Ranker {
		summary += " ranked=true"
	}
	if resp.Address != "" {
		summary += fmt.Sprintf(" address=%s cache_hit=%t", resp.Address, resp.CacheHit)
	}
	fmt.Fprintln(w, mutedStyle.Render(summary))

	for _, h := range resp.Highlights {
		fmt.Fprintf(w, "%s  %s %s\n", labelStyle.Render(h.Label), mutedStyle.Render(fmt.Sprintf("#%d", h.Index)), oneLine(h.Content))
	}
}

func renderAnswer(w io.Writer, resp *answer.Response) {
	if len(resp.Passages) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No passages selected."))
		return
	}
	fmt.Fprintln(w, answerStyle.Render(resp.Answer))
	fmt.Fprintln(w, headerStyle.Render("Passages"))
	for i, h := range resp.Search.Highlights {
		fmt.Fprintf(w, "%d. %s %s\n", i+1, labelStyle.Render(h.Label), oneLine(h.Content))
	}
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("duration=%s", resp.Duration.Round(1e6))))
}

func renderIngest(w io.Writer, results []ingestion.Result) {
	for _, r := range results {
		corpus := shorten(oneLine(r.Request.Corpus), 60)
		if r.Err != nil {
			fmt.Fprintf(w, "%s %s: %v\n", errorStyle.Render("failed"), corpus, r.Err)
			continue
		}
		state := "built"
		switch {
		case r.Prepared.Address == "":
			state = "empty"
		case r.Prepared.CacheHit:
			state = "cached"
		}
		fmt.Fprintf(w, "%-6s %s %s\n", state, mutedStyle.Render(fmt.Sprintf("%s spans=%d", r.Prepared.Address, r.Prepared.Spans)), corpus)
	}
}

func renderIndexes(w io.Writer, configs []*core.IndexConfig) {
	if len(configs) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No cached indexes."))
		return
	}
	for _, cfg := range configs {
		fmt.Fprintf(w, "%s windows=%q spans=%d query=%s passage=%s dim=%d sim=%s created=%s\n",
			cfg.Address, window.FormatSizes(cfg.WindowSizes), cfg.SpanCount,
			cfg.QueryModel, cfg.PassageModel, cfg.Dimension, cfg.Similarity,
			cfg.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func shorten(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
