package hclconfig

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Settings  *Settings   `hcl:"settings,block"`
	Sections  []*Section  `hcl:"section,block"`
	Resources []*Resource `hcl:"resource,block"`
	Replay    *Replay     `hcl:"replay,block"`
	Remain    hcl.Body    `hcl:",remain"`
}

// Settings is the HCL shape of the settings block.
type Settings struct {
	Namespace      *string `hcl:"namespace,optional"`
	NegativeTruth  *bool   `hcl:"negative_truth,optional"`
	RecursionLimit *int    `hcl:"recursion_limit,optional"`
	ParamSlots     *int    `hcl:"param_slots,optional"`
	PoolCapacity   *int    `hcl:"pool_capacity,optional"`
}

// Section is the HCL shape of a section block. Lines is kept as an
// expression so its source position can be reported with parse errors.
type Section struct {
	Name        string         `hcl:"name,label"`
	Namespace   *string        `hcl:"namespace,optional"`
	Hash        *string        `hcl:"hash,optional"`
	FilterIndex *float64       `hcl:"filter_index,optional"`
	Lines       hcl.Expression `hcl:"lines,optional"`
}

// Resource is the HCL shape of a resource block.
type Resource struct {
	Name        string  `hcl:"name,label"`
	Type        *string `hcl:"type,optional"`
	Width       *uint32 `hcl:"width,optional"`
	Height      *uint32 `hcl:"height,optional"`
	Format      *string `hcl:"format,optional"`
	ByteSize    *uint64 `hcl:"byte_size,optional"`
	SampleCount *uint32 `hcl:"sample_count,optional"`
}

// Replay is the HCL shape of the replay block.
type Replay struct {
	Frames   *int       `hcl:"frames,optional"`
	Textures []*Texture `hcl:"texture,block"`
	Events   []*Event   `hcl:"event,block"`
}

// Texture is the HCL shape of a replay texture block.
type Texture struct {
	Name   string   `hcl:"name,label"`
	Hash   *string  `hcl:"hash,optional"`
	Width  uint32   `hcl:"width"`
	Height uint32   `hcl:"height"`
	Format *string  `hcl:"format,optional"`
	Bind   []string `hcl:"bind,optional"`
}

// Event is the HCL shape of a replay event block. Draw parameters are read
// from the remaining attributes.
type Event struct {
	Kind      string         `hcl:"kind,label"`
	Section   *string        `hcl:"section,optional"`
	Texture   *string        `hcl:"texture,optional"`
	Telemetry hcl.Expression `hcl:"telemetry,optional"`
	Remain    hcl.Body       `hcl:",remain"`
}
