package ingest

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/joseph-ayodele/workorders-tracker/constants"
	"github.com/joseph-ayodele/workorders-tracker/internal/pipeline"
)

// FromUploads reads multipart files into documents in upload order. Files that
// cannot be read become failures.
func FromUploads(files []*multipart.FileHeader) ([]pipeline.Document, []pipeline.Failure) {
	docs := make([]pipeline.Document, 0, len(files))
	var failures []pipeline.Failure
	for _, fh := range files {
		data, err := readUpload(fh)
		if err != nil {
			failures = append(failures, pipeline.Failure{Name: fh.Filename, Stage: constants.StageRead, Error: err.Error()})
			continue
		}
		docs = append(docs, pipeline.NewDocument(fh.Filename, data))
	}
	return docs, failures
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > constants.MaxUploadBytes {
		return nil, fmt.Errorf("%s is larger than %d MiB", fh.Filename, constants.MaxUploadBytes>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(io.LimitReader(f, constants.MaxUploadBytes+1))
}
