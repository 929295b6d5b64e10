// Package model provides core.Invoker implementations: adapters that back
// agent invocations with a generation provider (see the openai and anthropic
// subpackages), a scripted mock for demos and tests, and a circuit-breaker
// wrapper for flaky backends.
//
// Adapters expose agent directives to the provider as two function tools,
// transfer_to_agent and request_tool, and translate the provider's tool
// calls back into the structured directives the strategies consume.
package model
