package coach

import "github.com/xostack/writewise/response"

// Status is the interaction mode shown to the presentation layer.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusError
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusReady:
		return "ready"
	default:
		return "unknown"
	}
}

// MessageKey identifies a user-facing message. Presentation layers map keys to
// localized text; Text returns the English default.
type MessageKey string

const (
	MessageNone             MessageKey = ""
	MessagePleaseEnterText  MessageKey = "pleaseEnterText"
	MessagePleaseWriteThree MessageKey = "pleaseWriteThree"
	MessageTopicError       MessageKey = "topicError"
	MessageEvaluationError  MessageKey = "evaluationError"
)

var englishMessages = map[MessageKey]string{
	MessagePleaseEnterText:  "Please enter some text.",
	MessagePleaseWriteThree: "Please write at least three sentences.",
	MessageTopicError:       "Could not generate a new topic. Please try again.",
	MessageEvaluationError:  "Could not evaluate your text. Please try again.",
}

// Text returns the English message for k.
func (k MessageKey) Text() string {
	return englishMessages[k]
}

// State is a snapshot of a session.
//
// Topic and Feedback belong to the session, not to a status: they stay visible
// while a new request is loading or after it failed, and are only replaced by a
// fully successful request.
type State struct {
	Status Status

	// Message and Err are set while Status is StatusError. Err keeps the
	// underlying cause; Message is the generic key meant for the user.
	Message MessageKey
	Err     error

	Topic    *response.Topic
	Feedback *response.Feedback

	// Draft is the text the user is writing. A new topic clears it.
	Draft string
}

// clone copies s so callers cannot reach session data through the snapshot.
func (s State) clone() State {
	out := s
	if s.Topic != nil {
		topic := *s.Topic
		out.Topic = &topic
	}
	if s.Feedback != nil {
		fb := *s.Feedback
		fb.Suggestions = append([]string(nil), s.Feedback.Suggestions...)
		out.Feedback = &fb
	}
	return out
}
