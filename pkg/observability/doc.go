/*
Package observability provides Prometheus instrumentation for the Gantry
engine: run outcomes, step durations, and webhook intake rejections.

Metrics are registered against an injected Registerer so tests and embedders
can isolate their registries.
*/
package observability
