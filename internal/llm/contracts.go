package llm

import (
	"context"
	"encoding/json"
)

// Image is one page or photo ready to be sent to a model.
type Image struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Fields is a decoded model reply keyed by field name.
type Fields map[string]json.RawMessage

// Model sends the work-order prompt and one image to a hosted model and returns
// the reply text exactly as received.
type Model interface {
	Complete(ctx context.Context, img Image) (string, error)
}

// ModelFunc adapts a function to Model.
type ModelFunc func(ctx context.Context, img Image) (string, error)

func (f ModelFunc) Complete(ctx context.Context, img Image) (string, error) {
	return f(ctx, img)
}
