package llm

import "context"

// Middleware wraps a Client with additional behavior
type Middleware func(next Client) Client

// clientFunc adapts plain functions to the Client interface
type clientFunc struct {
	complete  func(context.Context, CompletionRequest) (CompletionResponse, error)
	modelName func() string
}

func (f clientFunc) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	return f.complete(ctx, req)
}

func (f clientFunc) GetModelName() string {
	return f.modelName()
}

// WrapClient builds a Client from a completion function, delegating the
// model name to next
func WrapClient(next Client, complete func(context.Context, CompletionRequest) (CompletionResponse, error)) Client {
	return clientFunc{complete: complete, modelName: next.GetModelName}
}

// Chain composes middlewares around base. Earlier middlewares are outermost:
//
//	Chain(client, mw1, mw2) runs mw1 -> mw2 -> client
func Chain(base Client, middlewares ...Middleware) Client {
	client := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		client = middlewares[i](client)
	}
	return client
}
