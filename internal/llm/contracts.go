package llm

import "context"

// Completer is the interface our pipeline depends on: it sends one prompt to
// a text-completion service and returns the raw completion text.
//
// Implementations call the service with temperature 0 and ask for JSON
// output. They do not retry and do not cache; a transport, auth or quota
// failure is returned as a common.ServiceError.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a plain function to Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
