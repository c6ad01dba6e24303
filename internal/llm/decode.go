package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUndecodable marks a reply that is not a JSON object of the expected shape.
var ErrUndecodable = errors.New("model reply is not a work-order JSON object")

// DecodeError carries the reply that failed to decode.
type DecodeError struct {
	Raw   string
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v: %v", ErrUndecodable, e.Cause)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrUndecodable, e.Cause}
}

// StripFences removes a surrounding markdown code fence from a reply.
// Text without a fence is only trimmed.
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = text[3:]
		if len(text) >= 4 && strings.EqualFold(text[:4], "json") {
			text = text[4:]
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// Decode strips fences from a reply and parses it as a JSON object. Only an
// empty reply, invalid JSON or a non-object fails; field types are not checked
// here (see Fields.Check).
func Decode(raw string) (Fields, error) {
	body := []byte(StripFences(raw))
	if len(body) == 0 {
		return nil, &DecodeError{Raw: raw, Cause: errors.New("empty reply")}
	}
	if !json.Valid(body) {
		return nil, &DecodeError{Raw: raw, Cause: errors.New("invalid json")}
	}
	if trimmed := bytes.TrimSpace(body); trimmed[0] != '{' {
		return nil, &DecodeError{Raw: raw, Cause: errors.New("reply is not a json object")}
	}
	var fields Fields
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, &DecodeError{Raw: raw, Cause: err}
	}
	return fields, nil
}

// Extract makes one model call for img and decodes the reply. There is no retry.
func Extract(ctx context.Context, model Model, img Image) (Fields, error) {
	raw, err := model.Complete(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}
	return Decode(raw)
}
