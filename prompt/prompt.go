// Package prompt renders the two fixed prompts sent to the model: one asking for a
// writing topic, one asking for a scored evaluation of a submitted paragraph.
//
// Both builders are pure: the same input always yields byte-identical output.
// Values are inserted verbatim; callers that place user text inside the quoted
// slots should pass it through Escape first.
package prompt

import (
	"strings"
	"text/template"
)

const topicTemplate = `You are an English language learning assistant. Create a writing topic for practice.

Follow these instructions carefully:
1. Generate an engaging topic title
2. Create a thought-provoking writing prompt
3. Write a 2-3 sentence example response

Format your response EXACTLY like this example:
{
  "topic": "Digital Privacy - How do you protect your personal information online?",
  "example": "In today's digital age, I take several measures to protect my online privacy. I use strong, unique passwords for all my accounts and enable two-factor authentication whenever possible. Additionally, I'm careful about what personal information I share on social media and regularly review my privacy settings."
}

Important:
- Response must be valid JSON
- Do not include any text before or after the JSON
- Do not use markdown formatting
- Make sure the JSON is properly escaped
`

const evaluationTemplate = `You are an English language assessment expert.

Text to evaluate:
"{{.Text}}"

Topic:
"{{.Topic}}"

Evaluate the text and provide detailed feedback. Return the response in this JSON format:
{
  "grammar": number (0-10),
  "coherence": number (0-10),
  "vocabulary": number (0-10),
  "suggestions": [
    "suggestion 1",
    "suggestion 2",
    "suggestion 3"
  ]
}

Scoring criteria:
1. Grammar (0-10):
   - Grammar accuracy
   - Sentence structure
   - Punctuation

2. Coherence (0-10):
   - Connection to topic
   - Idea development
   - Focus

3. Vocabulary (0-10):
   - Word choice
   - Variety
   - Usage

Provide specific suggestions for improvement in the suggestions array.
Response must be valid JSON.
Do not include any text before or after the JSON.
`

var (
	topicTmpl      = template.Must(template.New("topic").Parse(topicTemplate))
	evaluationTmpl = template.Must(template.New("evaluation").Parse(evaluationTemplate))
)

// evaluationData is the substitution set of the evaluation template.
type evaluationData struct {
	Text  string
	Topic string
}

// BuildTopicPrompt returns the prompt asking for a {"topic", "example"} object.
func BuildTopicPrompt() string {
	return render(topicTmpl, nil)
}

// BuildEvaluationPrompt returns the prompt asking the model to score text against
// topic as a {"grammar", "coherence", "vocabulary", "suggestions"} object.
func BuildEvaluationPrompt(text, topic string) string {
	return render(evaluationTmpl, evaluationData{Text: text, Topic: topic})
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Escape makes s safe to embed between the double quotes of a template slot.
func Escape(s string) string {
	return escaper.Replace(s)
}

func render(t *template.Template, data any) string {
	var b strings.Builder
	// The templates are constants and only reference string fields.
	if err := t.Execute(&b, data); err != nil {
		panic("prompt: executing " + t.Name() + ": " + err.Error())
	}
	return b.String()
}
