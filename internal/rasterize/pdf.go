// Package rasterize splits PDF documents into page images with pdftoppm.
package rasterize

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/workorders-tracker/internal/common"
)

// Rasterizer renders every page of a PDF as a PNG, in page order.
type Rasterizer interface {
	Pages(ctx context.Context, name string, pdf []byte) ([][]byte, error)
}

// Config for PDFRasterizer.
type Config struct {
	Pdftoppm string // default "pdftoppm"
	DPI      int    // default 200
	MaxPages int    // 0 renders every page
}

// PDFRasterizer shells out to poppler's pdftoppm.
type PDFRasterizer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewPDFRasterizer(cfg Config, runner Runner, logger *slog.Logger) *PDFRasterizer {
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	return &PDFRasterizer{cfg: cfg, runner: runner, logger: logger}
}

func (r *PDFRasterizer) Pages(ctx context.Context, name string, pdf []byte) ([][]byte, error) {
	if !bytes.HasPrefix(bytes.TrimLeft(pdf, "\r\n\t "), []byte("%PDF")) {
		return nil, common.NewAppError("RASTERIZE_ERROR", name+" is not a pdf document", common.ErrRasterize)
	}

	tmpDir, err := os.MkdirTemp("", "wo-pp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			r.logger.Warn("rasterize.cleanup_failed", "dir", path, "error", err)
		}
	}(tmpDir)

	in := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("write %s: %w", name, err)
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 200 -png [-l N] <in.pdf> <tmp/page>
	args := []string{"-r", strconv.Itoa(r.cfg.DPI), "-png"}
	if r.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(r.cfg.MaxPages))
	}
	args = append(args, in, prefix)
	if _, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm, args...); err != nil {
		msg := strings.TrimSpace(string(errb))
		if msg == "" {
			msg = err.Error()
		}
		return nil, common.NewAppError("RASTERIZE_ERROR", fmt.Sprintf("pdftoppm %s: %s", name, msg), common.ErrRasterize)
	}

	paths, err := pagePaths(prefix)
	if err != nil {
		return nil, err
	}
	if r.cfg.MaxPages > 0 && len(paths) > r.cfg.MaxPages {
		paths = paths[:r.cfg.MaxPages]
	}
	if len(paths) == 0 {
		return nil, common.NewAppError("RASTERIZE_ERROR", name+": no pages rendered", common.ErrRasterize)
	}

	pages := make([][]byte, 0, len(paths))
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read rendered page: %w", err)
		}
		pages = append(pages, b)
	}

	r.logger.Info("rasterize.ok", "name", name, "pages", len(pages), "dpi", r.cfg.DPI)
	return pages, nil
}

// pagePaths returns prefix-N.png files ordered by N. pdftoppm zero-pads N
// depending on the page count, so a lexical sort is not enough.
func pagePaths(prefix string) ([]string, error) {
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}

	type page struct {
		n    int
		path string
	}
	pages := make([]page, 0, len(matches))
	for _, m := range matches {
		num := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), filepath.Base(prefix)+"-"), ".png")
		n, err := strconv.Atoi(num)
		if err != nil {
			continue
		}
		pages = append(pages, page{n: n, path: m})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].n < pages[j].n })

	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.path
	}
	return out, nil
}
