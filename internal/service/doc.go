// Package service routes command executions to tool providers.
//
// Tool IDs have the form "service.tool"; the registry finds the provider for
// the service prefix and calls it. Execute contains every failure: a
// provider error or panic comes back as a failed Result whose message can be
// shown to the user as is.
//
// Example Usage:
//
//	registry := service.NewRegistry(logger)
//	registry.Register(math.NewProvider(renderer, logger))
//	result, err := registry.Execute(ctx, "math.solve", params, appCtx)
package service
