package core

import (
	"github.com/gogpu/rendergraph/hal"
	"github.com/gogpu/rendergraph/statetrack"
	"github.com/gogpu/rendergraph/types"
)

// BufferUsageClass describes the single, fixed way a buffer is used for
// the lifetime of its handle. Unlike a bitmask, a buffer has exactly one
// usage class - a staging buffer is never also a vertex buffer - which
// is what lets the bind-group builder and the root-signature layout
// agree on which root parameter a given buffer binds through.
type BufferUsageClass uint8

const (
	BufferUsageStaging BufferUsageClass = iota
	BufferUsageVertex
	BufferUsageIndex
	BufferUsageConstant
	BufferUsageIndirectArgs
	BufferUsageUnorderedAccess
	BufferUsageAccelerationStructure
)

// String returns a human-readable name for the usage class.
func (u BufferUsageClass) String() string {
	switch u {
	case BufferUsageStaging:
		return "staging"
	case BufferUsageVertex:
		return "vertex"
	case BufferUsageIndex:
		return "index"
	case BufferUsageConstant:
		return "constant"
	case BufferUsageIndirectArgs:
		return "indirect-args"
	case BufferUsageUnorderedAccess:
		return "unordered-access"
	case BufferUsageAccelerationStructure:
		return "acceleration-structure"
	default:
		return "unknown"
	}
}

// BufferDescriptor describes a buffer to be created.
type BufferDescriptor struct {
	Label     string
	SizeBytes uint64
	Usage     BufferUsageClass
}

// Buffer is a live buffer resource: its native backing object plus the
// bookkeeping the rest of the module needs to track it across frames.
type Buffer struct {
	Native    hal.Buffer
	SizeBytes uint64
	Usage     BufferUsageClass
	Label     string
}

// TrackerKind returns the statetrack.Kind for this buffer. Buffers are
// always eligible for common-state promotion.
func (Buffer) TrackerKind() statetrack.Kind {
	return statetrack.KindBuffer
}

// TextureDescriptor describes a texture to be created.
type TextureDescriptor struct {
	Label              string
	Width, Height      uint32
	DepthOrArrayLayers uint32
	MipLevels          uint32
	Format             types.TextureFormat

	// SimultaneousAccess marks a texture as usable from multiple
	// pipeline stages concurrently without a barrier between read
	// states, matching D3D12's simultaneous-access resource flag. The
	// fluid-sim pass's ping-pong textures are not simultaneous-access;
	// they rely on explicit barrier_and_swap transitions instead.
	SimultaneousAccess bool

	// HasRenderTargetView marks a texture meant to get an RTV.
	// CreateTexture does not read it, and CreateRenderTargetView accepts
	// any texture regardless of it.
	HasRenderTargetView bool
	// HasDepthStencilView marks a texture meant to get a DSV.
	// CreateTexture does not read it, and CreateDepthStencilView accepts
	// any texture regardless of it.
	HasDepthStencilView bool
}

// Texture is a live texture resource.
type Texture struct {
	Native             hal.Texture
	Width, Height      uint32
	DepthOrArrayLayers uint32
	MipLevels          uint32
	Format             types.TextureFormat
	SimultaneousAccess bool
}

// TrackerKind returns the statetrack.Kind for this texture, reflecting
// whether it was created with SimultaneousAccess.
func (t Texture) TrackerKind() statetrack.Kind {
	if t.SimultaneousAccess {
		return statetrack.KindSimultaneousAccessTexture
	}
	return statetrack.KindTexture
}

// DescriptorRangeKind distinguishes what a descriptor range was carved
// out of a heap for, so create_rtv_handle / create_dsv_handle / the
// bindless resources-array can each validate they were given the right
// kind of handle.
type DescriptorRangeKind uint8

const (
	DescriptorRangeCBVSRVUAV DescriptorRangeKind = iota
	DescriptorRangeRTV
	DescriptorRangeDSV
)

// DescriptorRangeRecord associates an allocated descriptor range with
// the heap kind it came from, for validation when it is later bound.
type DescriptorRangeRecord struct {
	HeapStart uint32
	Count     uint32
	Kind      DescriptorRangeKind
}

// PipelineKind distinguishes a compute pipeline state object from a
// render pipeline state object.
type PipelineKind uint8

const (
	PipelineKindCompute PipelineKind = iota
	PipelineKindRender
)

// Pipeline is an opaque compute or render pipeline state object. Its
// shader bytecode is outside this module's scope; all it tracks is
// which root signature layout it was built against, so a command list
// can validate a bind group's layout matches the bound pipeline's.
type Pipeline struct {
	Kind   PipelineKind
	Layout BindGroupLayoutID
	Label  string
}
