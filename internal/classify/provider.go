package classify

import "context"

// LLMProvider sends a prompt to an external model and returns the raw
// text response. Used only by the Classifier; not exported to the rest
// of the system.
type LLMProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
