package writewise

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xostack/writewise/config"
)

// mockClient implements Client for testing.
type mockClient struct {
	credential   string
	generateFunc func(ctx context.Context, prompt string) (string, error)
	closed       bool
	closeErr     error
}

func (m *mockClient) Generate(ctx context.Context, prompt string) (string, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, prompt)
	}
	return m.credential + ":" + prompt, nil
}

func (m *mockClient) ProviderName() string { return "mock" }

func (m *mockClient) Close() error {
	m.closed = true
	return m.closeErr
}

// swapGetClient replaces the factory for the duration of a test.
func swapGetClient(t *testing.T, fn func(cfg config.Config, credential string, logger zerolog.Logger) (Client, error)) {
	t.Helper()
	original := GetClient
	GetClient = fn
	t.Cleanup(func() { GetClient = original })
}

func TestInvoker_CachesClientPerCredential(t *testing.T) {
	var (
		mu      sync.Mutex
		created = map[string]*mockClient{}
	)
	swapGetClient(t, func(cfg config.Config, credential string, logger zerolog.Logger) (Client, error) {
		mu.Lock()
		defer mu.Unlock()
		c := &mockClient{credential: credential}
		created[credential] = c
		return c, nil
	})

	inv := NewInvoker(config.NewConfig("gemini", 5, nil), zerolog.Nop())

	for _, key := range []string{"a", "b", "a", "b"} {
		got, err := inv.Invoke(context.Background(), key, "p")
		require.NoError(t, err)
		assert.Equal(t, key+":p", got)
	}
	assert.Len(t, created, 2)
	assert.Equal(t, "gemini", inv.ProviderName())

	require.NoError(t, inv.Close())
	assert.True(t, created["a"].closed)
	assert.True(t, created["b"].closed)
}

func TestInvoker_FactoryError(t *testing.T) {
	swapGetClient(t, func(cfg config.Config, credential string, logger zerolog.Logger) (Client, error) {
		return nil, errors.New("bad key")
	})

	inv := NewInvoker(config.NewConfig("gemini", 5, nil), zerolog.Nop())
	_, err := inv.Invoke(context.Background(), "a", "p")
	require.Error(t, err)
	assert.ErrorContains(t, err, "create gemini client: bad key")
}

func TestInvoker_GenerateErrorWrapped(t *testing.T) {
	quota := errors.New("quota exceeded")
	swapGetClient(t, func(cfg config.Config, credential string, logger zerolog.Logger) (Client, error) {
		return &mockClient{generateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", quota
		}}, nil
	})

	inv := NewInvoker(config.NewConfig("gemini", 5, nil), zerolog.Nop())
	_, err := inv.Invoke(context.Background(), "a", "p")
	assert.ErrorIs(t, err, quota)
}

func TestInvoker_AppliesTimeout(t *testing.T) {
	swapGetClient(t, func(cfg config.Config, credential string, logger zerolog.Logger) (Client, error) {
		return &mockClient{generateFunc: func(ctx context.Context, prompt string) (string, error) {
			deadline, ok := ctx.Deadline()
			if !ok {
				return "", errors.New("no deadline")
			}
			if time.Until(deadline) > 3*time.Second {
				return "", errors.New("deadline too far")
			}
			return "ok", nil
		}}, nil
	})

	inv := NewInvoker(config.NewConfig("gemini", 3, nil), zerolog.Nop())
	got, err := inv.Invoke(context.Background(), "a", "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestInvoker_CloseJoinsErrors(t *testing.T) {
	swapGetClient(t, func(cfg config.Config, credential string, logger zerolog.Logger) (Client, error) {
		return &mockClient{closeErr: errors.New("close " + credential)}, nil
	})

	inv := NewInvoker(config.NewConfig("gemini", 5, nil), zerolog.Nop())
	_, _ = inv.Invoke(context.Background(), "x", "p")

	err := inv.Close()
	require.Error(t, err)
	assert.ErrorContains(t, err, "close x")
	assert.NoError(t, inv.Close(), "second close has nothing left to close")
}
