package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildTopicPrompt_Deterministic(t *testing.T) {
	first := BuildTopicPrompt()
	second := BuildTopicPrompt()

	assert.Equal(t, first, second)
	assert.Contains(t, first, `"topic"`)
	assert.Contains(t, first, `"example"`)
	assert.Contains(t, first, "Do not include any text before or after the JSON")
}

func TestBuildEvaluationPrompt_SubstitutesValues(t *testing.T) {
	got := BuildEvaluationPrompt("I like tea. It is warm. It calms me.", "Favourite drinks")

	assert.Contains(t, got, "\"I like tea. It is warm. It calms me.\"")
	assert.Contains(t, got, "\"Favourite drinks\"")
	for _, key := range []string{`"grammar"`, `"coherence"`, `"vocabulary"`, `"suggestions"`} {
		assert.Contains(t, got, key)
	}
	assert.NotContains(t, got, "{{")
}

func TestBuildEvaluationPrompt_Deterministic(t *testing.T) {
	a := BuildEvaluationPrompt("A. B. C.", "T")
	b := BuildEvaluationPrompt("A. B. C.", "T")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, BuildEvaluationPrompt("A. B. D.", "T"))
}

func TestBuildEvaluationPrompt_NoHTMLEscaping(t *testing.T) {
	got := BuildEvaluationPrompt("Tom & Jerry <3. Yes. No.", "x")
	assert.Contains(t, got, "Tom & Jerry <3. Yes. No.")
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: `she said "hi"`, want: `she said \"hi\"`},
		{in: `back\slash`, want: `back\\slash`},
		{in: `\"`, want: `\\\"`},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, Escape(tc.in), "input %q", tc.in)
	}
}

func TestEscapedTextStaysInsideQuotes(t *testing.T) {
	got := BuildEvaluationPrompt(Escape(`He shouted "stop". We stopped. Then we left.`), "Stories")
	line := strings.Split(got, "\n")[3]
	assert.Equal(t, `"He shouted \"stop\". We stopped. Then we left."`, line)
}
