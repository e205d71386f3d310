// Package registry is the catalog of built-in directives.
//
// Modules register factories under BuiltIn... names at startup; the parser
// asks the registry for a fresh directive whenever a section contains
// run = BuiltIn<Name>. The registry is validated once after registration so
// a broken factory fails the process at startup rather than during a frame.
package registry
