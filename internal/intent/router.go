package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/mzanetti/turfdesk/internal/brain"
)

// Route is the closed set of intents the assistant can dispatch.
type Route string

const (
	RouteArithmetic Route = "math"
	RouteKnowledge  Route = "knowledge"
	RouteBooking    Route = "ground"
	RouteUnknown    Route = "out_of_my_known"
)

const routerPrompt = `You are a Query Router Agent.
Read the user's query and reply with only one agent name based on the intent.

Rules:
1. If the query is about math operations (calculation, equation, arithmetic, numbers), reply "math".
2. If the query asks for information, explanation, facts, or knowledge, reply "knowledge".
3. If the user wants to book a ground / playground / turf reservation, reply "ground".
4. For any other request, reply exactly "out_of_my_known".

Strict instructions:
- Reply with only one word.
- Do not answer the user query.
- Do not add punctuation or extra text.
- Allowed outputs only: math, knowledge, ground, out_of_my_known

User query: %q`

// Router classifies a free-text query into a Route. Classification is
// delegated to the brain; anything outside the allowed token set maps to
// RouteUnknown rather than falling through string comparisons.
type Router struct {
	adapter brain.Adapter
}

func NewRouter(adapter brain.Adapter) *Router {
	return &Router{adapter: adapter}
}

func (r *Router) Route(ctx context.Context, query string) (Route, error) {
	resp, err := r.adapter.Complete(ctx, brain.CompletionRequest{
		Prompt: fmt.Sprintf(routerPrompt, query),
	})
	if err != nil {
		return RouteUnknown, fmt.Errorf("route query: %w", err)
	}
	return parseRoute(resp.Text), nil
}

func parseRoute(token string) Route {
	switch Route(strings.ToLower(strings.TrimSpace(token))) {
	case RouteArithmetic:
		return RouteArithmetic
	case RouteKnowledge:
		return RouteKnowledge
	case RouteBooking:
		return RouteBooking
	default:
		return RouteUnknown
	}
}
