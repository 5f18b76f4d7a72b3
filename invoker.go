package writewise

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/xostack/writewise/config"
)

// Invoker calls the configured model service with an explicit credential. It
// builds one provider Client per credential on first use and reuses it after.
// Invoker is safe for concurrent use.
type Invoker struct {
	cfg     config.Config
	timeout time.Duration
	logger  zerolog.Logger

	mu      sync.Mutex
	clients map[string]Client
}

// NewInvoker returns an Invoker for cfg.DefaultProvider. Each call is bounded by
// cfg's request timeout.
func NewInvoker(cfg config.Config, logger zerolog.Logger) *Invoker {
	return &Invoker{
		cfg:     cfg,
		timeout: time.Duration(cfg.RequestTimeout()) * time.Second,
		logger:  logger,
		clients: make(map[string]Client),
	}
}

// Invoke sends prompt to the model using credential and returns the raw reply.
func (i *Invoker) Invoke(ctx context.Context, credential, prompt string) (string, error) {
	client, err := i.client(credential)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	text, err := client.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s generate: %w", client.ProviderName(), err)
	}
	return text, nil
}

// ProviderName returns the provider every call goes to.
func (i *Invoker) ProviderName() string {
	return i.cfg.DefaultProvider
}

func (i *Invoker) client(credential string) (Client, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if client, ok := i.clients[credential]; ok {
		return client, nil
	}

	client, err := GetClient(i.cfg, credential, i.logger)
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", i.cfg.DefaultProvider, err)
	}
	i.clients[credential] = client
	return client, nil
}

// Close closes every client created so far.
func (i *Invoker) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	var errs []error
	for credential, client := range i.clients {
		if err := client.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(i.clients, credential)
	}
	return errors.Join(errs...)
}
