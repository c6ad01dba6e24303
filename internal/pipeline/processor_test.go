package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/workorders-tracker/constants"
	"github.com/joseph-ayodele/workorders-tracker/internal/common"
	"github.com/joseph-ayodele/workorders-tracker/internal/entity"
	"github.com/joseph-ayodele/workorders-tracker/internal/llm"
)

type passthroughImages struct{}

func (passthroughImages) Prepare(name string, data []byte) (llm.Image, error) {
	if string(data) == "corrupt" {
		return llm.Image{}, errors.New("image: unknown format")
	}
	return llm.Image{Name: name, MIMEType: "image/png", Data: data}, nil
}

type fakePages struct {
	pages map[string][][]byte
}

func (f fakePages) Pages(ctx context.Context, name string, pdf []byte) ([][]byte, error) {
	pages, ok := f.pages[name]
	if !ok {
		return nil, errors.New("pdftoppm: no pages rendered")
	}
	return pages, nil
}

// scriptedModel replies based on the image bytes: "fail" errors, "garbage"
// returns prose, anything else becomes the work order number.
func scriptedModel(calls *[]string) llm.Model {
	return llm.ModelFunc(func(ctx context.Context, img llm.Image) (string, error) {
		*calls = append(*calls, img.Name)
		switch string(img.Data) {
		case "fail":
			return "", errors.New("503 service unavailable")
		case "garbage":
			return "Sorry, I cannot help with that.", nil
		}
		return fmt.Sprintf("```json\n{\"work_order_number\": %q, \"hours\": 2}\n```", img.Data), nil
	})
}

func numbers(records []entity.WorkOrder) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = *r.WorkOrderNumber
	}
	return out
}

func TestRun_FailuresAreIsolated(t *testing.T) {
	var calls []string
	p := NewProcessor(nil, scriptedModel(&calls), passthroughImages{}, fakePages{})

	docs := []Document{
		NewDocument("a.png", []byte("WO-A")),
		NewDocument("b.jpg", []byte("fail")),
		NewDocument("c.jpeg", []byte("WO-C")),
		NewDocument("d.webp", []byte("garbage")),
		NewDocument("e.png", []byte("corrupt")),
		NewDocument("notes.txt", []byte("WO-X")),
		NewDocument("f.png", []byte("WO-F")),
	}
	batch := p.Run(context.Background(), docs, nil)

	assert.Equal(t, []string{"WO-A", "WO-C", "WO-F"}, numbers(batch.Records))
	require.Len(t, batch.Failures, 4)
	assert.Equal(t, "b.jpg", batch.Failures[0].Name)
	assert.Equal(t, constants.StageExtraction, batch.Failures[0].Stage)
	assert.Contains(t, batch.Failures[0].Error, "503")
	assert.True(t, strings.HasPrefix(batch.Failures[0].Error, common.ErrExtraction.Error()), batch.Failures[0].Error)
	assert.Equal(t, "d.webp", batch.Failures[1].Name)
	assert.Equal(t, constants.StageExtraction, batch.Failures[1].Stage)
	assert.Equal(t, "e.png", batch.Failures[2].Name)
	assert.Equal(t, constants.StagePrepare, batch.Failures[2].Stage)
	assert.Equal(t, "notes.txt", batch.Failures[3].Name)
	assert.Equal(t, constants.StageRead, batch.Failures[3].Stage)

	assert.Equal(t, "a.png", batch.Records[0].Filename)
	// one model call per image, no retries
	assert.Len(t, calls, 5)
}

func TestRun_MistypedRepliesStillProduceRecords(t *testing.T) {
	replies := map[string]string{
		"a.png": `{"work_order_number":"WO-A","customer_sign":"Yes","hours":2}`,
		"b.png": "```json\n" + `{"work_order_number":"WO-B","description":["line 1","line 2"]}` + "\n```",
		"c.png": `{"work_order_number":"WO-C","hours":true,"total_amount_due":"$80"}`,
	}
	model := llm.ModelFunc(func(ctx context.Context, img llm.Image) (string, error) {
		return replies[img.Name], nil
	})
	p := NewProcessor(nil, model, passthroughImages{}, fakePages{})

	batch := p.Run(context.Background(), []Document{
		NewDocument("a.png", []byte("x")),
		NewDocument("b.png", []byte("x")),
		NewDocument("c.png", []byte("x")),
	}, nil)

	require.Empty(t, batch.Failures)
	assert.Equal(t, []string{"WO-A", "WO-B", "WO-C"}, numbers(batch.Records))
	assert.True(t, *batch.Records[0].CustomerSign)
	assert.Equal(t, "line 1\nline 2", *batch.Records[1].Description)
	assert.True(t, batch.Records[2].Hours.IsNull())
	assert.Equal(t, "$80", batch.Records[2].TotalAmountDue.Text())
}

func TestRun_PDFPageProvenance(t *testing.T) {
	var calls []string
	pages := fakePages{pages: map[string][][]byte{
		"scan.pdf": {[]byte("WO-P1"), []byte("fail"), []byte("WO-P3")},
	}}
	p := NewProcessor(nil, scriptedModel(&calls), passthroughImages{}, pages)

	docs := []Document{
		NewDocument("scan.pdf", []byte("%PDF")),
		NewDocument("broken.pdf", []byte("%PDF")),
		NewDocument("z.png", []byte("WO-Z")),
	}
	batch := p.Run(context.Background(), docs, nil)

	require.Len(t, batch.Records, 3)
	assert.Equal(t, "scan.pdf - Page 1", batch.Records[0].Filename)
	assert.Equal(t, "scan.pdf - Page 3", batch.Records[1].Filename)
	assert.Equal(t, "z.png", batch.Records[2].Filename)

	require.Len(t, batch.Failures, 2)
	assert.Equal(t, Failure{Name: "scan.pdf", Page: 2, Stage: constants.StageExtraction}, withoutError(batch.Failures[0]))
	assert.Equal(t, "broken.pdf", batch.Failures[1].Name)
	assert.Equal(t, constants.StageRasterize, batch.Failures[1].Stage)

	assert.Equal(t, []string{"scan.pdf - Page 1", "scan.pdf - Page 2", "scan.pdf - Page 3", "z.png"}, calls)
}

func withoutError(f Failure) Failure {
	f.Error = ""
	return f
}

func TestRun_ProgressAndCancellation(t *testing.T) {
	var calls []string
	p := NewProcessor(nil, scriptedModel(&calls), passthroughImages{}, fakePages{})

	ctx, cancel := context.WithCancel(context.Background())
	var seen []string
	progress := func(done, total int, name string) {
		seen = append(seen, fmt.Sprintf("%d/%d %s", done, total, name))
		if done == 1 {
			cancel()
		}
	}

	batch := p.Run(ctx, []Document{
		NewDocument("a.png", []byte("WO-A")),
		NewDocument("b.png", []byte("WO-B")),
	}, progress)

	assert.Equal(t, []string{"1/2 a.png", "2/2 b.png"}, seen)
	assert.Equal(t, []string{"WO-A"}, numbers(batch.Records))
	require.Len(t, batch.Failures, 1)
	assert.True(t, strings.Contains(batch.Failures[0].Error, "canceled"))
}

func TestRun_EmptyBatch(t *testing.T) {
	batch := NewProcessor(nil, nil, nil, nil).Run(context.Background(), nil, nil)
	assert.NotNil(t, batch.Records)
	assert.NotNil(t, batch.Failures)
	assert.Empty(t, batch.Records)
}

func TestKindFromName(t *testing.T) {
	assert.Equal(t, constants.IMAGE, KindFromName("A.JPG"))
	assert.Equal(t, constants.IMAGE, KindFromName("b.webp"))
	assert.Equal(t, constants.PDF, KindFromName("c.Pdf"))
	assert.Equal(t, constants.DocumentKind(""), KindFromName("d.heic"))
}
