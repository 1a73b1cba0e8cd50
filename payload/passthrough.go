package payload

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xraph/hookstream/delivery"
)

// Passthrough wraps the request body and source address in a JSON envelope
// without inspecting the path.
type Passthrough struct{}

// NewPassthrough returns the generic passthrough processor.
func NewPassthrough() Passthrough { return Passthrough{} }

// Process emits {"source": ..., "body": ...}.
func (Passthrough) Process(_ context.Context, req *delivery.Request, _ Context) (string, error) {
	out, err := json.Marshal(envelope{Source: req.Source, Body: req.Body})
	if err != nil {
		return "", fmt.Errorf("payload: marshal envelope: %w", err)
	}
	return string(out), nil
}

type envelope struct {
	Source string `json:"source"`
	Body   any    `json:"body"`
}
