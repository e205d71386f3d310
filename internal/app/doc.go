// Package app wires the engine, the built-in catalog, the configuration
// loader and the replay executor into one runnable application, decoupled
// from any specific entrypoint like a CLI.
package app
