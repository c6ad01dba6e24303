package pipeline

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/workorders-tracker/constants"
	"github.com/joseph-ayodele/workorders-tracker/internal/entity"
)

// Document is one uploaded file.
type Document struct {
	Name string
	Kind constants.DocumentKind
	Data []byte
}

// KindFromName maps a file name to a document kind by extension, or "" when unsupported.
func KindFromName(name string) constants.DocumentKind {
	return constants.MapExtToKind(filepath.Ext(name))
}

// NewDocument builds a Document whose kind is taken from its name.
func NewDocument(name string, data []byte) Document {
	return Document{Name: name, Kind: KindFromName(name), Data: data}
}

// Failure records an input (or one page of it) that produced no record.
type Failure struct {
	Name  string                 `json:"name"`
	Page  int                    `json:"page,omitempty"`
	Stage constants.FailureStage `json:"stage"`
	Error string                 `json:"error"`
}

// Batch is the result of one extraction pass. It is replaced wholesale by the
// next submission and never merged.
type Batch struct {
	ID        uuid.UUID          `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	Records   []entity.WorkOrder `json:"records"`
	Failures  []Failure          `json:"failures"`
}

// NewBatch returns an empty batch with a fresh id.
func NewBatch() Batch {
	return Batch{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Records:   []entity.WorkOrder{},
		Failures:  []Failure{},
	}
}

// WithRecords returns a copy of b whose records are replaced by records.
func (b Batch) WithRecords(records []entity.WorkOrder) Batch {
	if records == nil {
		records = []entity.WorkOrder{}
	}
	b.Records = records
	return b
}
