// Package assistant is the top-level conversational service: it routes each
// incoming query to a handler and owns the suspend/resume lifecycle of
// booking negotiations. Handler failures become user-visible replies; no
// error escapes to the caller's loop.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mzanetti/turfdesk/internal/booking"
	"github.com/mzanetti/turfdesk/internal/checkpoint"
	"github.com/mzanetti/turfdesk/internal/intent"
	"github.com/mzanetti/turfdesk/internal/mathexpr"
	"github.com/mzanetti/turfdesk/internal/observability"
)

// Router classifies a fresh query.
type Router interface {
	Route(ctx context.Context, query string) (intent.Route, error)
}

// Answerer handles knowledge queries, single-shot.
type Answerer interface {
	Answer(ctx context.Context, query string) (string, error)
}

// Negotiator advances a booking negotiation by one human turn.
type Negotiator interface {
	Step(ctx context.Context, input string, draft booking.Draft) (booking.StepResult, error)
}

// TurnResult is what one call to HandleTurn yields. Pending means the
// negotiation suspended and Question must be put to the human; the caller
// re-invokes HandleTurn with the same thread id and the human's answer.
type TurnResult struct {
	ThreadID string         `json:"thread_id"`
	Route    intent.Route   `json:"route"`
	Reply    string         `json:"reply"`
	Pending  bool           `json:"pending"`
	Question string         `json:"question,omitempty"`
	Draft    *booking.Draft `json:"draft,omitempty"`
}

type Service struct {
	router      Router
	answerer    Answerer
	negotiator  Negotiator
	registry    checkpoint.Registry
	store       booking.Store
	metrics     *observability.Metrics
	defaultUser string

	mu      sync.Mutex
	threads map[string]*sync.Mutex
}

func New(router Router, answerer Answerer, negotiator Negotiator, registry checkpoint.Registry, store booking.Store, metrics *observability.Metrics) *Service {
	return &Service{
		router:      router,
		answerer:    answerer,
		negotiator:  negotiator,
		registry:    registry,
		store:       store,
		metrics:     metrics,
		defaultUser: "anonymous",
		threads:     make(map[string]*sync.Mutex),
	}
}

// SetDefaultUser overrides the fallback identity used for turns that carry
// no user id.
func (s *Service) SetDefaultUser(id string) {
	if strings.TrimSpace(id) != "" {
		s.defaultUser = id
	}
}

// HandleTurn runs one request/response step for a thread. Steps for the same
// thread id are serialized; different threads run in parallel.
func (s *Service) HandleTurn(ctx context.Context, threadID, userID, text string) TurnResult {
	lock := s.threadLock(threadID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveTurn(observability.StageTurnTotal, time.Since(start))
		}
	}()

	if strings.TrimSpace(userID) == "" {
		userID = s.defaultUser
	}

	// A suspended negotiation short-circuits routing: the new text is the
	// human's answer to the outstanding question.
	cp, err := s.registry.Load(ctx, threadID)
	if err == nil {
		return s.bookingTurn(ctx, threadID, text, cp.Draft, true)
	}
	if !errors.Is(err, checkpoint.ErrNotFound) {
		return TurnResult{ThreadID: threadID, Reply: "Sorry, I lost track of that conversation. Please start again."}
	}

	routeStart := time.Now()
	route, err := s.router.Route(ctx, text)
	if s.metrics != nil {
		s.metrics.ObserveTurn(observability.StageRoute, time.Since(routeStart))
		s.metrics.RouteDecisions.WithLabelValues(string(route)).Inc()
	}
	if err != nil {
		route = intent.RouteUnknown
	}

	switch route {
	case intent.RouteArithmetic:
		return TurnResult{ThreadID: threadID, Route: route, Reply: evalArithmetic(text)}
	case intent.RouteBooking:
		return s.bookingTurn(ctx, threadID, text, booking.Draft{UserID: userID}, false)
	default:
		// Unknown deliberately falls back to the knowledge answerer
		// instead of a canned refusal; the route label above keeps the
		// two distinguishable in metrics.
		reply, err := s.answerer.Answer(ctx, text)
		if err != nil {
			reply = "Sorry, I can't look that up right now. Please try again."
		}
		return TurnResult{ThreadID: threadID, Route: route, Reply: reply}
	}
}

// Reservations returns a snapshot of the confirmed set.
func (s *Service) Reservations(ctx context.Context) ([]booking.Reservation, error) {
	return s.store.All(ctx)
}

func (s *Service) bookingTurn(ctx context.Context, threadID, text string, draft booking.Draft, resumed bool) TurnResult {
	stepStart := time.Now()
	res, err := s.negotiator.Step(ctx, text, draft)
	if s.metrics != nil {
		s.metrics.ObserveTurn(observability.StageNegotiate, time.Since(stepStart))
	}
	if err != nil {
		// Store or transport trouble. The checkpoint, if any, stays put so
		// the human can simply answer again; the turn itself terminates
		// with the apology rather than suspending on a question we don't
		// have.
		return TurnResult{
			ThreadID: threadID,
			Route:    intent.RouteBooking,
			Reply:    "Sorry, I couldn't process your booking just now. Please try again.",
		}
	}

	if res.Pending {
		cp := checkpoint.Checkpoint{
			ThreadID: threadID,
			Draft:    res.Draft,
			Question: res.Question,
			Phase:    booking.PhaseCollecting,
		}
		if saveErr := s.registry.Save(ctx, cp); saveErr != nil {
			return TurnResult{
				ThreadID: threadID,
				Route:    intent.RouteBooking,
				Reply:    "Sorry, I couldn't hold on to your booking details. Please start again.",
			}
		}
		if s.metrics != nil {
			if !resumed {
				s.metrics.ActiveNegotiations.Inc()
			}
			if res.Draft.Status != "" {
				s.metrics.ReservationAttempts.WithLabelValues("conflict").Inc()
			}
		}
		return TurnResult{
			ThreadID: threadID,
			Route:    intent.RouteBooking,
			Pending:  true,
			Question: res.Question,
			Reply:    res.Question,
			Draft:    &res.Draft,
		}
	}

	_ = s.registry.Clear(ctx, threadID)
	if s.metrics != nil {
		if resumed {
			s.metrics.ActiveNegotiations.Dec()
		}
		if !res.Abandoned {
			s.metrics.ReservationAttempts.WithLabelValues("confirmed").Inc()
		}
	}
	return TurnResult{
		ThreadID: threadID,
		Route:    intent.RouteBooking,
		Reply:    res.Outcome,
		Draft:    &res.Draft,
	}
}

func evalArithmetic(text string) string {
	v, err := mathexpr.Eval(strings.TrimSpace(text))
	switch {
	case err == nil:
		return mathexpr.Format(v)
	case errors.Is(err, mathexpr.ErrDivideByZero):
		return "Error: Division by zero."
	case errors.Is(err, mathexpr.ErrDisallowedChar):
		return "Error: Only numbers and + - * / ** and parentheses are allowed."
	case errors.Is(err, mathexpr.ErrEmptyExpression):
		return "Error: Empty expression."
	default:
		return fmt.Sprintf("Error: Could not evaluate expression (%v).", err)
	}
}

// threadLock returns the mutex serializing steps for one thread id. Locks
// are kept for the life of the process; thread cardinality is bounded by
// the conversation count, not request volume.
func (s *Service) threadLock(threadID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.threads[threadID]
	if !ok {
		lock = &sync.Mutex{}
		s.threads[threadID] = lock
	}
	return lock
}
