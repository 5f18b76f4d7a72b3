// Package writewise drives a generative language model to run writing practice:
// it asks the model for a practice topic and scores a submitted paragraph against it.
//
// The package itself holds the model service layer: the provider-neutral Client
// interface, the GetClient factory and the Invoker that binds a rotating pool of
// credentials to provider clients. Orchestration lives in the coach package;
// prompt rendering in prompt; parsing and shape checks of model output in response.
//
// Supported providers:
//   - Google Gemini (cloud-based, default)
//   - Groq (cloud-based, OpenAI-compatible API)
//   - Ollama (self-hosted)
//
// Example usage:
//
//	cfg, err := config.Load("")
//	if err != nil {
//		log.Fatal(err)
//	}
//	rotator, err := credential.NewRotator(cfg.CredentialPool())
//	if err != nil {
//		log.Fatal(err)
//	}
//	invoker := writewise.NewInvoker(cfg, zerolog.Nop())
//	defer invoker.Close()
//
//	c := coach.New(invoker, rotator)
//	if err := c.GenerateTopic(context.Background()); err != nil {
//		log.Printf("topic generation failed: %v", err)
//	}
//	fmt.Println(c.State().Topic.Topic)
package writewise

import (
	"context"
)

// Client is the interface that all LLM provider clients must implement.
//
// A Client is bound to a single credential. The Invoker creates one Client per
// credential of the pool and picks between them on every call.
type Client interface {
	// Generate takes a context and a prompt string and returns the LLM's raw response text.
	//
	// Implementations should respect context cancellation. Network errors,
	// authentication failures, quota errors and content filtering are all
	// reported as errors; the caller treats them as one service failure class.
	Generate(ctx context.Context, prompt string) (string, error)

	// ProviderName returns the name of the LLM provider (e.g., "gemini", "ollama", "groq").
	ProviderName() string

	// Close releases resources held by the underlying SDK client.
	Close() error
}
