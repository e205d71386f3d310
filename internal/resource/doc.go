// Package resource manages the named custom resources a configuration
// declares (the Resource<Name> locators) and the per-resource pools that
// keep recreated copies from thrashing allocation.
//
// A custom resource takes the shape of whatever is copied into it. When
// the shape changes the resource is swapped for a pooled one matching the
// new description, so a destination alternating between a few recurring
// shapes settles on a fixed set of allocations.
package resource
