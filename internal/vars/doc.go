// Package vars holds the variables of the directive language.
//
// A Variable is a named float32 cell. Locals belong to the section that
// declares them; globals live in a process-wide Table shared by name across
// sections, and persistent globals are additionally tracked by a Registry so
// their values survive a configuration reload.
//
// Scope is the parse-time name table. It exists only while a section is being
// parsed: every name in a finished expression has already been replaced by a
// direct *Variable link, so nothing in this package is consulted by name at
// run time except the host-facing Table accessors.
package vars
