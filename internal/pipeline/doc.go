// Package pipeline describes the graphics host the directive engine runs
// inside: binding points, resources and their descriptions, draw calls, and
// the telemetry the host exposes to expressions.
//
// Nothing here talks to a GPU. The interception layer implements Device for
// the real API; package sim implements it in memory for tests and replays.
package pipeline
