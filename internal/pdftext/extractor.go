package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Arupreza/ScholarScout/internal/common"
)

type Config struct {
	Backend  string // common.PDFBackendTabula (default) | common.PDFBackendLedongthuc
	MaxPages int    // pages read from the start of the document, default 3
	MaxChars int    // excerpt budget in runes, default 8000
}

// Excerpt is the bounded text prefix handed to the prompt builder.
type Excerpt struct {
	Text       string
	PagesRead  int
	TotalPages int
	EmptyPages int
	Truncated  bool
	Backend    string
	Duration   time.Duration
	Warnings   []string
}

type Extractor struct {
	cfg    Config
	open   openFunc
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 3
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = 8000
	}
	var open openFunc
	switch strings.ToLower(cfg.Backend) {
	case common.PDFBackendLedongthuc:
		cfg.Backend = common.PDFBackendLedongthuc
		open = openLedongthuc
	default:
		cfg.Backend = common.PDFBackendTabula
		open = openTabula
	}
	return &Extractor{cfg: cfg, open: open, logger: logger}
}

// Extract reads the configured number of pages from path.
func (e *Extractor) Extract(ctx context.Context, path string) (Excerpt, error) {
	return e.ExtractPages(ctx, path, e.cfg.MaxPages)
}

// ExtractPages reads up to maxPages pages from the start of the PDF at path,
// joins their normalized text in page order and truncates the result to the
// character budget. Pages without extractable text contribute nothing; only a
// file that cannot be opened as a PDF at all is an error (UnreadablePaper).
func (e *Extractor) ExtractPages(ctx context.Context, path string, maxPages int) (Excerpt, error) {
	start := time.Now()
	out := Excerpt{Backend: e.cfg.Backend}
	if maxPages <= 0 {
		maxPages = e.cfg.MaxPages
	}

	st, err := os.Stat(path)
	if err != nil {
		return out, common.UnreadablePaper("stat file", err)
	}
	if st.IsDir() {
		return out, common.UnreadablePaper(fmt.Sprintf("%s is a directory", path), nil)
	}
	if st.Size() == 0 {
		return out, common.UnreadablePaper("empty file", nil)
	}

	doc, err := safely(func() (document, error) { return e.open(path) })
	if err != nil {
		e.logger.Warn("pdf open failed", "path", path, "backend", e.cfg.Backend, "error", err)
		return out, common.UnreadablePaper("open pdf", err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			e.logger.Warn("pdf close error", "path", path, "error", cerr)
		}
	}()

	total, err := safely(doc.PageCount)
	if err != nil {
		return out, common.UnreadablePaper("read page tree", err)
	}
	out.TotalPages = total

	n := min(total, maxPages)
	pagesText := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		txt, err := safely(func() (string, error) { return doc.PageText(i) })
		out.PagesRead++
		if err != nil {
			// a broken page is treated like an image-only one
			out.Warnings = append(out.Warnings, fmt.Sprintf("page %d: %v", i, err))
			out.EmptyPages++
			continue
		}
		txt = Normalize(txt)
		if txt == "" {
			out.EmptyPages++
			continue
		}
		pagesText = append(pagesText, txt)
	}

	out.Text, out.Truncated = Truncate(strings.Join(pagesText, "\n\n"), e.cfg.MaxChars)
	out.Duration = time.Since(start)

	e.logger.Debug("pdf excerpt extracted",
		"path", path,
		"backend", e.cfg.Backend,
		"pages_read", out.PagesRead,
		"total_pages", out.TotalPages,
		"empty_pages", out.EmptyPages,
		"chars", len([]rune(out.Text)),
		"truncated", out.Truncated,
		"warnings", len(out.Warnings),
		"elapsed_ms", out.Duration.Milliseconds(),
	)
	return out, nil
}
