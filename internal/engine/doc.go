// Package engine owns the loaded program: every parsed section, the global
// variable table, the persistent variable registry and the custom
// resources. It parses a config.Model into a program, optimizes it and
// publishes it atomically, so a reload never disturbs invocations that are
// already running on the previous program.
package engine
