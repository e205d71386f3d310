// Package hclconfig loads a workspace written in HCL into config.Model.
//
// A workspace is one or more .hcl files holding settings, section, resource
// and replay blocks. Section bodies stay in the directive grammar; HCL only
// carries them, usually as heredocs.
package hclconfig
