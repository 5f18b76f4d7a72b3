package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xostack/writewise/coach"
	"github.com/xostack/writewise/response"
)

const banner = `writewise: practice writing in English.
Commands: new (get a topic), tips, help, quit.
Write your paragraph, then finish it with an empty line to have it scored.
`

const tips = `Writing tips

Grammar and structure
  - Vary your sentences (simple, compound, complex)
  - Use punctuation correctly
  - Keep your tenses consistent

Vocabulary
  - Avoid repetition; use synonyms
  - Use words and phrases specific to the topic
  - Use linking words effectively

Coherence and flow
  - Present your ideas in a logical order
  - Connect each sentence to the ones around it
  - Stay on the main topic
`

// session renders a coach in a line-oriented terminal.
type session struct {
	coach *coach.Coach
	in    *bufio.Scanner
	out   io.Writer
}

func newSession(c *coach.Coach, in io.Reader, out io.Writer) *session {
	return &session{coach: c, in: bufio.NewScanner(in), out: out}
}

func (s *session) run(ctx context.Context) error {
	fmt.Fprint(s.out, banner)

	var block []string
	for s.in.Scan() {
		line := strings.TrimRight(s.in.Text(), "\r")

		if len(block) == 0 {
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "quit", "exit":
				return nil
			case "help":
				fmt.Fprint(s.out, banner)
				continue
			case "tips":
				fmt.Fprint(s.out, tips)
				continue
			case "new":
				s.newTopic(ctx)
				continue
			case "":
				continue
			}
		}

		if strings.TrimSpace(line) != "" {
			block = append(block, line)
			s.coach.SetDraft(strings.Join(block, "\n"))
			continue
		}

		s.evaluate(ctx, strings.Join(block, "\n"))
		block = nil
	}
	if err := s.in.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if len(block) > 0 {
		s.evaluate(ctx, strings.Join(block, "\n"))
	}
	return nil
}

func (s *session) newTopic(ctx context.Context) {
	fmt.Fprintln(s.out, "Generating a topic...")
	err := s.coach.GenerateTopic(ctx)
	s.render(err)
}

func (s *session) evaluate(ctx context.Context, text string) {
	state := s.coach.State()
	if state.Topic == nil {
		fmt.Fprintln(s.out, "Type 'new' to get a topic before writing.")
		return
	}

	if coach.CountSentences(text) >= coach.MinSentences {
		fmt.Fprintln(s.out, "Evaluating...")
	}
	s.render(s.coach.EvaluateText(ctx, text, state.Topic.Topic))
}

func (s *session) render(err error) {
	if errors.Is(err, coach.ErrSuperseded) {
		return
	}

	state := s.coach.State()
	switch state.Status {
	case coach.StatusError:
		fmt.Fprintf(s.out, "Error: %s\n", state.Message.Text())
	case coach.StatusReady:
		if state.Feedback != nil {
			writeFeedback(s.out, *state.Feedback)
		} else if state.Topic != nil {
			writeTopic(s.out, *state.Topic)
		}
	}
}

func writeTopic(w io.Writer, t response.Topic) {
	fmt.Fprintf(w, "\nTopic: %s\n\nExample:\n%s\n\nWrite at least %d sentences, then an empty line.\n",
		t.Topic, t.Example, coach.MinSentences)
}

func writeFeedback(w io.Writer, f response.Feedback) {
	fmt.Fprintf(w, "\nGrammar:    %g/10\nCoherence:  %g/10\nVocabulary: %g/10\nTotal:      %g/%d\n",
		f.Grammar, f.Coherence, f.Vocabulary, f.Total(), response.MaxTotal)
	if len(f.Suggestions) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSuggestions:")
	for _, suggestion := range f.Suggestions {
		fmt.Fprintf(w, "  - %s\n", suggestion)
	}
}
