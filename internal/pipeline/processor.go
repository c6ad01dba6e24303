package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/workorders-tracker/constants"
	"github.com/joseph-ayodele/workorders-tracker/internal/common"
	"github.com/joseph-ayodele/workorders-tracker/internal/entity"
	"github.com/joseph-ayodele/workorders-tracker/internal/llm"
	"github.com/joseph-ayodele/workorders-tracker/internal/rasterize"
)

// ImagePreparer turns raw image bytes into a model-ready image.
type ImagePreparer interface {
	Prepare(name string, data []byte) (llm.Image, error)
}

// Progress is called after each document with the number done so far.
type Progress func(done, total int, name string)

// Processor runs the model over a batch of documents, one item at a time.
type Processor struct {
	Logger *slog.Logger
	Model  llm.Model
	Images ImagePreparer
	Pages  rasterize.Rasterizer
}

func NewProcessor(logger *slog.Logger, model llm.Model, images ImagePreparer, pages rasterize.Rasterizer) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Model: model, Images: images, Pages: pages}
}

// Run extracts one record per image and one per PDF page, in input order.
// Inputs that fail are listed in Batch.Failures and never stop the batch.
// ctx is checked between items; once it is done the remaining inputs are
// reported as failures.
func (p *Processor) Run(ctx context.Context, docs []Document, progress Progress) Batch {
	batch := NewBatch()
	start := time.Now()

	p.Logger.Info("pipeline.batch.start", "batch_id", batch.ID, "documents", len(docs))

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			p.fail(&batch, doc.Name, 0, constants.StageExtraction, err)
		} else {
			switch doc.Kind {
			case constants.IMAGE:
				p.runImage(ctx, &batch, doc)
			case constants.PDF:
				p.runPDF(ctx, &batch, doc)
			default:
				p.fail(&batch, doc.Name, 0, constants.StageRead, fmt.Errorf("unsupported document type %q", doc.Name))
			}
		}

		if progress != nil {
			progress(i+1, len(docs), doc.Name)
		}
	}

	p.Logger.Info("pipeline.batch.done",
		"batch_id", batch.ID,
		"records", len(batch.Records),
		"failures", len(batch.Failures),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return batch
}

func (p *Processor) runImage(ctx context.Context, batch *Batch, doc Document) {
	img, err := p.Images.Prepare(doc.Name, doc.Data)
	if err != nil {
		p.fail(batch, doc.Name, 0, constants.StagePrepare, err)
		return
	}
	p.extract(ctx, batch, img, doc.Name, doc.Name, 0)
}

func (p *Processor) runPDF(ctx context.Context, batch *Batch, doc Document) {
	pages, err := p.Pages.Pages(ctx, doc.Name, doc.Data)
	if err != nil {
		p.fail(batch, doc.Name, 0, constants.StageRasterize, err)
		return
	}

	for i, page := range pages {
		n := i + 1
		if err := ctx.Err(); err != nil {
			p.fail(batch, doc.Name, n, constants.StageExtraction, err)
			continue
		}
		provenance := PageProvenance(doc.Name, n)
		img, err := p.Images.Prepare(provenance, page)
		if err != nil {
			p.fail(batch, doc.Name, n, constants.StagePrepare, err)
			continue
		}
		p.extract(ctx, batch, img, doc.Name, provenance, n)
	}
}

func (p *Processor) extract(ctx context.Context, batch *Batch, img llm.Image, name, provenance string, page int) {
	fields, err := llm.Extract(ctx, p.Model, img)
	if err != nil {
		p.fail(batch, name, page, constants.StageExtraction, fmt.Errorf("%w: %w", common.ErrExtraction, err))
		return
	}
	if err := fields.Check(); err != nil {
		p.Logger.Warn("pipeline.item.schema_mismatch", "batch_id", batch.ID, "name", provenance, "error", err)
	}
	batch.Records = append(batch.Records, entity.FromFields(fields, provenance))
	p.Logger.Debug("pipeline.item.ok", "batch_id", batch.ID, "name", provenance)
}

func (p *Processor) fail(batch *Batch, name string, page int, stage constants.FailureStage, err error) {
	batch.Failures = append(batch.Failures, Failure{Name: name, Page: page, Stage: stage, Error: err.Error()})
	p.Logger.Warn("pipeline.item.failed",
		"batch_id", batch.ID,
		"name", name,
		"page", page,
		"stage", stage,
		"error", err,
	)
}

// PageProvenance names the record produced from page n (1-based) of a PDF.
func PageProvenance(name string, n int) string {
	return fmt.Sprintf("%s - Page %d", name, n)
}
