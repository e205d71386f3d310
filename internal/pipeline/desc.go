package pipeline

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/gogpu/gputypes"
)

// ResourceKind separates textures from buffers.
type ResourceKind uint8

const (
	KindTexture2D ResourceKind = iota
	KindBuffer
)

func (k ResourceKind) String() string {
	if k == KindBuffer {
		return "buffer"
	}
	return "texture2d"
}

// Desc is the shape of a resource. Two resources with equal descriptions are
// interchangeable for copy purposes.
type Desc struct {
	Kind          ResourceKind
	Size          gputypes.Extent3D
	Format        gputypes.TextureFormat
	Dimension     gputypes.TextureDimension
	Usage         gputypes.TextureUsage
	BufferUsage   gputypes.BufferUsage
	ByteSize      uint64
	SampleCount   uint32
	MipLevelCount uint32
	Stereo        bool
}

// Texture2D returns the description of a plain single-sampled 2D texture.
func Texture2D(width, height uint32, format gputypes.TextureFormat) Desc {
	return Desc{
		Kind:          KindTexture2D,
		Size:          gputypes.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		Format:        format,
		Dimension:     gputypes.TextureDimension2D,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst,
		SampleCount:   1,
		MipLevelCount: 1,
	}
}

// Buffer returns the description of a buffer of size bytes.
func Buffer(size uint64) Desc {
	return Desc{
		Kind:        KindBuffer,
		ByteSize:    size,
		BufferUsage: gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst | gputypes.BufferUsageStorage | gputypes.BufferUsageUniform,
	}
}

// Hash returns an FNV-1a hash over every field. It keys the resource pool.
func (d Desc) Hash() uint64 {
	h := fnv.New64a()
	hashWriteUint32(h, uint32(d.Kind))
	hashWriteUint32(h, d.Size.Width)
	hashWriteUint32(h, d.Size.Height)
	hashWriteUint32(h, d.Size.DepthOrArrayLayers)
	hashWriteUint32(h, uint32(d.Format))
	hashWriteUint32(h, uint32(d.Dimension))
	hashWriteUint32(h, uint32(d.Usage))
	hashWriteUint32(h, uint32(d.BufferUsage))
	hashWriteUint64(h, d.ByteSize)
	hashWriteUint32(h, d.SampleCount)
	hashWriteUint32(h, d.MipLevelCount)
	hashWriteBool(h, d.Stereo)
	return h.Sum64()
}

type hashWriter interface{ Write(p []byte) (int, error) }

func hashWriteUint32(h hashWriter, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

func hashWriteUint64(h hashWriter, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}

func hashWriteBool(h hashWriter, v bool) {
	if v {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
}

func (d Desc) String() string {
	if d.Kind == KindBuffer {
		return fmt.Sprintf("buffer[%d bytes]", d.ByteSize)
	}
	s := fmt.Sprintf("texture2d[%dx%d %s", d.Size.Width, d.Size.Height, FormatName(d.Format))
	if d.SampleCount > 1 {
		s += fmt.Sprintf(" msaa%d", d.SampleCount)
	}
	if d.Stereo {
		s += " stereo"
	}
	return s + "]"
}

var formatNames = map[string]gputypes.TextureFormat{
	"rgba8unorm":           gputypes.TextureFormatRGBA8Unorm,
	"bgra8unorm":           gputypes.TextureFormatBGRA8Unorm,
	"r8unorm":              gputypes.TextureFormatR8Unorm,
	"depth24plusstencil8":  gputypes.TextureFormatDepth24PlusStencil8,
	"depth24plus_stencil8": gputypes.TextureFormatDepth24PlusStencil8,
}

// ParseFormat maps a configuration format name to a texture format.
func ParseFormat(name string) (gputypes.TextureFormat, error) {
	if f, ok := formatNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return f, nil
	}
	return gputypes.TextureFormatUndefined, fmt.Errorf("unknown texture format %q", name)
}

// FormatName is the inverse of ParseFormat.
func FormatName(f gputypes.TextureFormat) string {
	switch f {
	case gputypes.TextureFormatRGBA8Unorm:
		return "rgba8unorm"
	case gputypes.TextureFormatBGRA8Unorm:
		return "bgra8unorm"
	case gputypes.TextureFormatR8Unorm:
		return "r8unorm"
	case gputypes.TextureFormatDepth24PlusStencil8:
		return "depth24plusstencil8"
	}
	return "undefined"
}
