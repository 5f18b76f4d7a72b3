// Package coach orchestrates a writing-practice session: it asks the model for
// a topic, checks the user's text locally, asks the model to score it, and keeps
// the session state the presentation layer renders.
package coach

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xostack/writewise/credential"
	"github.com/xostack/writewise/prompt"
	"github.com/xostack/writewise/response"
)

const tracerName = "github.com/xostack/writewise/coach"

// MinSentences is the number of sentence fragments a text needs before it is
// sent for evaluation.
const MinSentences = 3

var sentenceTerminators = regexp.MustCompile(`[.!?]+`)

// ModelService sends a prompt to the model with one credential and returns the
// raw text. *writewise.Invoker satisfies it.
type ModelService interface {
	Invoke(ctx context.Context, credential, prompt string) (string, error)
}

// Option configures a Coach.
type Option func(*Coach)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Coach) { c.logger = logger }
}

// WithMetrics sets the collector set. Without it nothing is recorded.
func WithMetrics(m *Metrics) Option {
	return func(c *Coach) { c.metrics = m }
}

// WithTracer sets the tracer. The default comes from the global otel provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Coach) { c.tracer = tracer }
}

// Coach owns one session. It is safe for concurrent use: a request started
// while another is in flight supersedes it, and the older result is dropped.
type Coach struct {
	service ModelService
	rotator *credential.Rotator
	logger  zerolog.Logger
	metrics *Metrics
	tracer  trace.Tracer

	mu       sync.RWMutex
	state    State
	ticket   uint64
	inFlight int
}

// New returns a Coach in the idle state.
func New(service ModelService, rotator *credential.Rotator, opts ...Option) *Coach {
	c := &Coach{
		service: service,
		rotator: rotator,
		logger:  zerolog.Nop(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the session.
func (c *Coach) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.clone()
}

// Busy reports whether any model request is still running. Presentation
// layers use it to disable their controls.
func (c *Coach) Busy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inFlight > 0
}

// SetDraft records the text the user is currently writing.
func (c *Coach) SetDraft(text string) {
	c.mu.Lock()
	c.state.Draft = text
	c.mu.Unlock()
}

// Draft returns the text the user is currently writing.
func (c *Coach) Draft() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Draft
}

// GenerateTopic asks the model for a new topic and blocks until the session
// state reflects the outcome. On success the draft and feedback are cleared.
func (c *Coach) GenerateTopic(ctx context.Context) error {
	return c.runTopic(ctx, c.begin())
}

// GenerateTopicAsync is GenerateTopic on its own goroutine. The session is in
// StatusLoading by the time it returns; the channel yields the single result.
func (c *Coach) GenerateTopicAsync(ctx context.Context) <-chan error {
	ticket := c.begin()
	done := make(chan error, 1)
	go func() { done <- c.runTopic(ctx, ticket) }()
	return done
}

// EvaluateText checks text locally, then asks the model to score it against
// topic and blocks until the session state reflects the outcome. Local failures
// return an *InputError without contacting the model.
func (c *Coach) EvaluateText(ctx context.Context, text, topic string) error {
	if err := c.checkInput(text); err != nil {
		return err
	}
	return c.runEvaluation(ctx, c.begin(), text, topic)
}

// EvaluateTextAsync is EvaluateText on its own goroutine. Local failures are
// applied before it returns and delivered on the channel.
func (c *Coach) EvaluateTextAsync(ctx context.Context, text, topic string) <-chan error {
	done := make(chan error, 1)
	if err := c.checkInput(text); err != nil {
		done <- err
		return done
	}
	ticket := c.begin()
	go func() { done <- c.runEvaluation(ctx, ticket, text, topic) }()
	return done
}

// CountSentences returns the number of non-blank fragments left after
// splitting text on runs of '.', '!' and '?'.
func CountSentences(text string) int {
	n := 0
	for _, fragment := range sentenceTerminators.Split(text, -1) {
		if strings.TrimSpace(fragment) != "" {
			n++
		}
	}
	return n
}

func (c *Coach) checkInput(text string) error {
	var err *InputError
	switch {
	case strings.TrimSpace(text) == "":
		err = &InputError{Message: MessagePleaseEnterText, Err: ErrEmptyText}
	case CountSentences(text) < MinSentences:
		err = &InputError{Message: MessagePleaseWriteThree, Err: ErrTooFewSentences}
	default:
		return nil
	}

	c.mu.Lock()
	// A later action owns the state, so anything still in flight is stale.
	c.ticket++
	c.state.Status = StatusError
	c.state.Message = err.Message
	c.state.Err = err
	c.mu.Unlock()

	c.metrics.observe(OpEvaluateText, outcome(err), 0)
	c.logger.Debug().Str("operation", string(OpEvaluateText)).Err(err).Msg("rejected input locally")
	return err
}

// begin moves the session to loading and returns the ticket that must still be
// current when the result arrives.
func (c *Coach) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticket++
	c.inFlight++
	c.state.Status = StatusLoading
	c.state.Message = MessageNone
	c.state.Err = nil
	return c.ticket
}

// commit applies update if ticket is still current. It reports false when the
// result was superseded.
func (c *Coach) commit(ticket uint64, update func(*State)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight--
	if ticket != c.ticket {
		return false
	}
	update(&c.state)
	return true
}

func (c *Coach) runTopic(ctx context.Context, ticket uint64) error {
	ctx, span, log, finish := c.startRequest(ctx, OpGenerateTopic)
	defer span.End()

	topic, err := c.fetchTopic(ctx, log)
	finish(err)

	committed := c.commit(ticket, func(s *State) {
		if err != nil {
			s.Status = StatusError
			s.Message = MessageTopicError
			s.Err = err
			return
		}
		s.Status = StatusReady
		s.Topic = &topic
		s.Feedback = nil
		s.Draft = ""
	})
	return c.settle(committed, err, span, log)
}

func (c *Coach) runEvaluation(ctx context.Context, ticket uint64, text, topic string) error {
	ctx, span, log, finish := c.startRequest(ctx, OpEvaluateText)
	defer span.End()
	span.SetAttributes(attribute.Int("writewise.text_length", len(text)))

	feedback, err := c.fetchFeedback(ctx, log, text, topic)
	finish(err)

	committed := c.commit(ticket, func(s *State) {
		if err != nil {
			s.Status = StatusError
			s.Message = MessageEvaluationError
			s.Err = err
			return
		}
		s.Status = StatusReady
		s.Feedback = &feedback
	})
	return c.settle(committed, err, span, log)
}

// startRequest opens the span and request logger for op. finish records the
// outcome in metrics, span and log.
func (c *Coach) startRequest(ctx context.Context, op Operation) (context.Context, trace.Span, zerolog.Logger, func(error)) {
	requestID := uuid.NewString()
	ctx, span := c.tracer.Start(ctx, "coach."+string(op), trace.WithAttributes(
		attribute.String("writewise.operation", string(op)),
		attribute.String("writewise.request_id", requestID),
	))
	log := c.logger.With().Str("operation", string(op)).Str("request_id", requestID).Logger()
	start := time.Now()

	finish := func(err error) {
		result := outcome(err)
		elapsed := time.Since(start)
		c.metrics.observe(op, result, elapsed)
		span.SetAttributes(attribute.String("writewise.outcome", result))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, result)
			log.Warn().Err(err).Str("outcome", result).Dur("elapsed", elapsed).Msg("request failed")
			return
		}
		log.Info().Dur("elapsed", elapsed).Msg("request succeeded")
	}
	return ctx, span, log, finish
}

func (c *Coach) settle(committed bool, err error, span trace.Span, log zerolog.Logger) error {
	if committed {
		return err
	}
	c.metrics.staleResult()
	span.AddEvent("result discarded")
	log.Debug().Err(err).Msg("discarding superseded result")
	return ErrSuperseded
}

func (c *Coach) fetchTopic(ctx context.Context, log zerolog.Logger) (response.Topic, error) {
	raw, err := c.invoke(ctx, log, OpGenerateTopic, prompt.BuildTopicPrompt())
	if err != nil {
		return response.Topic{}, err
	}
	value, err := response.Decode(raw)
	if err != nil {
		return response.Topic{}, err
	}
	return response.ValidateTopic(value)
}

func (c *Coach) fetchFeedback(ctx context.Context, log zerolog.Logger, text, topic string) (response.Feedback, error) {
	p := prompt.BuildEvaluationPrompt(prompt.Escape(text), prompt.Escape(topic))
	raw, err := c.invoke(ctx, log, OpEvaluateText, p)
	if err != nil {
		return response.Feedback{}, err
	}
	value, err := response.Decode(raw)
	if err != nil {
		return response.Feedback{}, err
	}
	feedback, err := response.ValidateFeedback(value)
	if err != nil {
		return response.Feedback{}, err
	}

	// grammar must be a JSON number in the decoded payload itself.
	if obj, ok := value.(map[string]any); !ok || !response.IsNumber(obj["grammar"]) {
		return response.Feedback{}, &response.ValidationError{
			Shape: response.ShapeFeedback,
			Err:   errors.New("grammar is not numeric"),
		}
	}
	return feedback, nil
}

func (c *Coach) invoke(ctx context.Context, log zerolog.Logger, op Operation, p string) (string, error) {
	slot, key := c.rotator.NextSlot()
	log.Debug().Int("credential_slot", slot).Int("prompt_length", len(p)).Msg("invoking model")

	raw, err := c.service.Invoke(ctx, key, p)
	if err != nil {
		return "", &ServiceError{Op: op, Err: err}
	}
	log.Debug().Int("response_length", len(raw)).Msg("model responded")
	return raw, nil
}
