package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("response has unexpected shape")

// Shape names used in ValidationError.
const (
	ShapeTopic    = "topic"
	ShapeFeedback = "feedback"
)

// Extra keys are allowed in both shapes. Scores are not range-checked.
const topicSchemaText = `{
  "type": "object",
  "required": ["topic", "example"],
  "properties": {
    "topic":   {"type": "string", "pattern": "\\S"},
    "example": {"type": "string", "pattern": "\\S"}
  }
}`

const feedbackSchemaText = `{
  "type": "object",
  "required": ["grammar", "coherence", "vocabulary", "suggestions"],
  "properties": {
    "grammar":     {"type": "number"},
    "coherence":   {"type": "number"},
    "vocabulary":  {"type": "number"},
    "suggestions": {"type": "array", "items": {"type": "string"}}
  }
}`

var (
	topicSchema    = jsonschema.MustCompileString("topic.schema.json", topicSchemaText)
	feedbackSchema = jsonschema.MustCompileString("feedback.schema.json", feedbackSchemaText)
)

// ValidationError reports a decoded value that does not match its expected shape.
type ValidationError struct {
	Shape string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s payload: %v", e.Shape, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ValidateTopic checks that v is an object with non-blank string fields "topic"
// and "example" and returns them. Other keys are ignored.
func ValidateTopic(v any) (Topic, error) {
	if err := topicSchema.Validate(v); err != nil {
		return Topic{}, &ValidationError{Shape: ShapeTopic, Err: err}
	}

	obj := v.(map[string]any)
	topic := Topic{
		Topic:   obj["topic"].(string),
		Example: obj["example"].(string),
	}
	// The schema pattern only knows ASCII whitespace.
	if strings.TrimSpace(topic.Topic) == "" {
		return Topic{}, &ValidationError{Shape: ShapeTopic, Err: errors.New("topic is blank")}
	}
	if strings.TrimSpace(topic.Example) == "" {
		return Topic{}, &ValidationError{Shape: ShapeTopic, Err: errors.New("example is blank")}
	}
	return topic, nil
}

// ValidateFeedback checks that v carries numeric grammar, coherence and
// vocabulary scores plus a (possibly empty) array of string suggestions.
// Scores outside 0..10 are passed through unchanged.
func ValidateFeedback(v any) (Feedback, error) {
	if err := feedbackSchema.Validate(v); err != nil {
		return Feedback{}, &ValidationError{Shape: ShapeFeedback, Err: err}
	}

	obj := v.(map[string]any)
	fb := Feedback{Suggestions: []string{}}

	var err error
	if fb.Grammar, err = number(obj["grammar"]); err != nil {
		return Feedback{}, &ValidationError{Shape: ShapeFeedback, Err: fmt.Errorf("grammar: %w", err)}
	}
	if fb.Coherence, err = number(obj["coherence"]); err != nil {
		return Feedback{}, &ValidationError{Shape: ShapeFeedback, Err: fmt.Errorf("coherence: %w", err)}
	}
	if fb.Vocabulary, err = number(obj["vocabulary"]); err != nil {
		return Feedback{}, &ValidationError{Shape: ShapeFeedback, Err: fmt.Errorf("vocabulary: %w", err)}
	}
	for _, s := range obj["suggestions"].([]any) {
		fb.Suggestions = append(fb.Suggestions, s.(string))
	}

	return fb, nil
}

// IsNumber reports whether v is a JSON number as produced by Decode.
func IsNumber(v any) bool {
	_, err := number(v)
	return err == nil
}

func number(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case json.Number:
		return n.Float64()
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}
