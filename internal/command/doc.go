// Package command implements directive lists: the per-section programs a
// configuration attaches to pipeline events.
//
// A Section owns two Lists, one run before the triggering pipeline
// operation and one after it. Each List is an ordered slice of Directives.
// Parser turns configuration lines into Sections, resolving every variable
// and resource name into a direct link as it goes; Optimizer then folds
// constant expressions, links sub-list invocations by pointer and drops
// directives that can never do anything in their phase.
//
// Run executes a List against a Context. Contexts are per invocation, so
// concurrent invocations from different host threads share only the global
// variables, the custom resources and the profiling counters, all of which
// are safe for concurrent use.
package command
