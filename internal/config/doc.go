// Package config defines the format-agnostic configuration model of a
// workspace: engine settings, directive sections, custom resources and an
// optional replay script, along with the Loader interface that produces it.
//
// Concrete loaders, such as the HCL one, live in separate packages.
package config
