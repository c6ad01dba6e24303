package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/workorders-tracker/constants"
	"github.com/joseph-ayodele/workorders-tracker/internal/pipeline"
)

type DirStats struct {
	Scanned uint32
	Matched uint32
	Failed  uint32
}

// Collect turns the given files and directories into pipeline documents, in
// argument order with directory contents in lexical order. Explicitly named
// files are kept even with an unsupported extension so the pipeline reports
// them; inside directories only supported files are picked up. Unreadable
// files become failures.
func Collect(ctx context.Context, paths []string, skipHidden bool) ([]pipeline.Document, []pipeline.Failure, DirStats, error) {
	if len(paths) == 0 {
		return nil, nil, DirStats{}, errors.New("at least one file or directory is required")
	}

	var (
		docs     []pipeline.Document
		failures []pipeline.Failure
		stats    DirStats
	)

	add := func(path string) {
		stats.Matched++
		doc, err := readDocument(path)
		if err != nil {
			failures = append(failures, pipeline.Failure{Name: filepath.Base(path), Stage: constants.StageRead, Error: err.Error()})
			stats.Failed++
			return
		}
		docs = append(docs, doc)
	}

	for _, root := range paths {
		if err := ctx.Err(); err != nil {
			return docs, failures, stats, err
		}
		root = strings.TrimSpace(root)
		info, err := os.Stat(root)
		if err != nil {
			stats.Scanned++
			stats.Failed++
			failures = append(failures, pipeline.Failure{Name: root, Stage: constants.StageRead, Error: err.Error()})
			continue
		}
		if !info.IsDir() {
			stats.Scanned++
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			stats.Scanned++
			if walkErr != nil {
				failures = append(failures, pipeline.Failure{Name: path, Stage: constants.StageRead, Error: walkErr.Error()})
				stats.Failed++
				return nil // continue walking
			}
			if skipHidden && path != root && IsHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !AllowedExt(filepath.Ext(path)) {
				return nil
			}
			add(path)
			return ctx.Err()
		})
		if err != nil {
			return docs, failures, stats, fmt.Errorf("walk %s: %w", root, err)
		}
	}
	return docs, failures, stats, nil
}

func readDocument(path string) (pipeline.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return pipeline.Document{}, err
	}
	if info.Size() > constants.MaxUploadBytes {
		return pipeline.Document{}, fmt.Errorf("%s is larger than %d MiB", filepath.Base(path), constants.MaxUploadBytes>>20)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Document{}, err
	}
	return pipeline.NewDocument(filepath.Base(path), data), nil
}
