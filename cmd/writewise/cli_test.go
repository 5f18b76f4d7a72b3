package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xostack/writewise/coach"
	"github.com/xostack/writewise/config"
	"github.com/xostack/writewise/credential"
	"github.com/xostack/writewise/prompt"
)

const (
	topicJSON    = `{"topic":"Morning Routines","example":"I wake up early. I drink water first. Then I go for a walk."}`
	feedbackJSON = `{"grammar":8,"coherence":7,"vocabulary":6,"suggestions":["Use more linking words."]}`
)

// stubService answers topic prompts with topicJSON and everything else with feedbackJSON.
type stubService struct {
	calls  int
	closed bool
}

func (s *stubService) Invoke(_ context.Context, _ string, p string) (string, error) {
	s.calls++
	if p == prompt.BuildTopicPrompt() {
		return "```json\n" + topicJSON + "\n```", nil
	}
	return feedbackJSON, nil
}

func (s *stubService) ProviderName() string { return "stub" }

func (s *stubService) Close() error {
	s.closed = true
	return nil
}

func runSession(t *testing.T, svc *stubService, input string) string {
	t.Helper()
	rotator, err := credential.NewRotator([]string{"k"})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	s := newSession(coach.New(svc, rotator), strings.NewReader(input), out)
	require.NoError(t, s.run(context.Background()))
	return out.String()
}

func TestSession_TopicThenEvaluate(t *testing.T) {
	svc := &stubService{}
	out := runSession(t, svc, "new\nI like mornings. I wake up at six.\nThen I make coffee.\n\nquit\n")

	assert.Contains(t, out, "Topic: Morning Routines")
	assert.Contains(t, out, "Evaluating...")
	assert.Contains(t, out, "Grammar:    8/10")
	assert.Contains(t, out, "Total:      21/30")
	assert.Contains(t, out, "  - Use more linking words.")
	assert.Equal(t, 2, svc.calls)
}

func TestSession_EvaluatesTrailingBlockAtEOF(t *testing.T) {
	svc := &stubService{}
	out := runSession(t, svc, "new\nOne. Two. Three.")

	assert.Contains(t, out, "Total:      21/30")
	assert.Equal(t, 2, svc.calls)
}

func TestSession_RequiresTopicFirst(t *testing.T) {
	svc := &stubService{}
	out := runSession(t, svc, "One. Two. Three.\n\n")

	assert.Contains(t, out, "Type 'new' to get a topic before writing.")
	assert.Zero(t, svc.calls)
}

func TestSession_TooFewSentences(t *testing.T) {
	svc := &stubService{}
	out := runSession(t, svc, "new\nJust one sentence here.\n\n")

	assert.Contains(t, out, "Error: "+coach.MessagePleaseWriteThree.Text())
	assert.NotContains(t, out, "Evaluating...")
	assert.Equal(t, 1, svc.calls, "only the topic request reaches the model")
}

func TestSession_CommandsOnlyAtBlockStart(t *testing.T) {
	svc := &stubService{}
	out := runSession(t, svc, "new\nI wrote this. Then I wrote more.\nquit\n\n")

	// "quit" inside a block is part of the paragraph, which now has three fragments.
	assert.Contains(t, out, "Total:      21/30")
}

func TestSession_Tips(t *testing.T) {
	out := runSession(t, &stubService{}, "tips\nquit\n")

	assert.Contains(t, out, "Writing tips")
	assert.Contains(t, out, "Coherence and flow")
}

// executeCLI runs the root command with newService swapped for svc.
func executeCLI(t *testing.T, svc *stubService, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	original := newService
	newService = func(config.Config, zerolog.Logger) (modelService, error) { return svc, nil }
	t.Cleanup(func() { newService = original })

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfigFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `default_provider = "gemini"

[llms.gemini]
api_keys = ["key-1", "key-2"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRootCmd_RunsSessionAndClosesService(t *testing.T) {
	svc := &stubService{}
	path := writeConfigFixture(t)

	stdout, _, err := executeCLI(t, svc, "new\nquit\n", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Topic: Morning Routines")
	assert.True(t, svc.closed)
}

func TestRootCmd_DebugLogsToStderr(t *testing.T) {
	svc := &stubService{}
	path := writeConfigFixture(t)

	_, stderr, err := executeCLI(t, svc, "quit\n", "--config", path, "--debug")
	require.NoError(t, err)
	assert.Contains(t, stderr, "session ready")
	assert.Contains(t, stderr, "stub")
}

func TestRootCmd_WarnsAboutUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `default_provider = "gemini"
colour = "blue"

[llms.gemini]
api_keys = ["key-1"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, stderr, err := executeCLI(t, &stubService{}, "quit\n", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "ignoring unknown configuration key")
	assert.Contains(t, stderr, "colour")
}

func TestRootCmd_MissingConfigFile(t *testing.T) {
	_, _, err := executeCLI(t, &stubService{}, "", "--config", filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load configuration")
}

func TestInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	stdout, _, err := executeCLI(t, &stubService{}, "", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote "+path)

	cfg, err := config.LoadFromFile(path)
	require.Error(t, err, "template has no keys yet")
	assert.ErrorIs(t, err, config.ErrNoCredentials)
	assert.Empty(t, cfg.DefaultProvider)

	_, _, err = executeCLI(t, &stubService{}, "", "init", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = executeCLI(t, &stubService{}, "", "init", "--config", path, "--force")
	require.NoError(t, err)
}

func TestNewLogger(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, newLogger(&bytes.Buffer{}, "", false).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, newLogger(&bytes.Buffer{}, "info", false).GetLevel())
	assert.Equal(t, zerolog.DebugLevel, newLogger(&bytes.Buffer{}, "error", true).GetLevel())
	assert.Equal(t, zerolog.WarnLevel, newLogger(&bytes.Buffer{}, "loud", false).GetLevel())
}
