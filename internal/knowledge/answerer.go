// Package knowledge answers informational queries through the brain. The
// retrieval side (documents, embeddings) lives behind the model backend and
// is out of scope here; this package only shapes the single-shot call.
package knowledge

import (
	"context"
	"fmt"

	"github.com/mzanetti/turfdesk/internal/brain"
)

const answerPrompt = `You are a concise assistant. Answer the question directly.
If you do not know the answer, say you don't know instead of guessing.

Question: %s`

type Answerer struct {
	adapter brain.Adapter
}

func NewAnswerer(adapter brain.Adapter) *Answerer {
	return &Answerer{adapter: adapter}
}

func (a *Answerer) Answer(ctx context.Context, query string) (string, error) {
	resp, err := a.adapter.Complete(ctx, brain.CompletionRequest{
		Prompt: fmt.Sprintf(answerPrompt, query),
	})
	if err != nil {
		return "", fmt.Errorf("answer query: %w", err)
	}
	return resp.Text, nil
}
