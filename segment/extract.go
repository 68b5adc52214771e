package segment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// maxWebBody caps how much of a web page is read.
const maxWebBody = 32 << 20

// Extractor turns a corpus reference (a path or URL) into plain text.
type Extractor interface {
	Extract(ctx context.Context, ref string) (string, error)
}

// FileExtractor reads local files. PDFs are decoded page by page, HTML files
// are reduced to their visible text and anything else is read as UTF-8.
type FileExtractor struct {
	logger *slog.Logger
}

var _ Extractor = (*FileExtractor)(nil)

// NewFileExtractor creates a file extractor.
func NewFileExtractor(logger *slog.Logger) *FileExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileExtractor{logger: logger.With("component", "file-extractor")}
}

// Extract returns the normalized text of the file at path.
func (e *FileExtractor) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err = readPDF(path)
	case ".html", ".htm":
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return "", fmt.Errorf("open file: %w", err)
		}
		defer f.Close()
		text, err = htmlText(f)
	default:
		var raw []byte
		raw, err = os.ReadFile(path)
		text = string(raw)
	}
	if err != nil {
		e.logger.Error("error extracting file", "path", path, "err", err)
		return "", err
	}
	e.logger.Debug("extracted file", "path", path, "chars", len(text))
	return normalizeWhitespace(text), nil
}

func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	total := r.NumPage()
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, pageErr := p.GetPlainText(nil)
		if pageErr != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

// WebExtractor downloads a page and returns its visible text.
type WebExtractor struct {
	client *http.Client
	logger *slog.Logger
}

var _ Extractor = (*WebExtractor)(nil)

// NewWebExtractor creates a web extractor using client, or
// http.DefaultClient when client is nil.
func NewWebExtractor(client *http.Client, logger *slog.Logger) *WebExtractor {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WebExtractor{client: client, logger: logger.With("component", "web-extractor")}
}

// Extract fetches url and returns the normalized text of the response.
func (e *WebExtractor) Extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Error("error fetching page", "url", url, "err", err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	body := io.LimitReader(resp.Body, maxWebBody)
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	var text string
	if mediaType == "text/plain" {
		raw, err := io.ReadAll(body)
		if err != nil {
			return "", err
		}
		text = string(raw)
	} else {
		text, err = htmlText(body)
		if err != nil {
			return "", err
		}
	}
	e.logger.Debug("extracted page", "url", url, "chars", len(text))
	return normalizeWhitespace(text), nil
}

// htmlText parses an HTML document and returns its visible text. Block level
// elements are separated by blank lines so they survive as paragraphs.
func htmlText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Head, atom.Template:
				return
			case atom.Br:
				b.WriteString("\n")
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && isBlock(n.DataAtom) {
			b.WriteString("\n\n")
		}
	}
	walk(doc)
	return b.String(), nil
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Section, atom.Article, atom.Main, atom.Header, atom.Footer,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Li, atom.Ul, atom.Ol, atom.Tr, atom.Table, atom.Blockquote, atom.Pre:
		return true
	}
	return false
}
