// Package statetrack tracks per-resource GPU states within a single
// command list and produces the minimal set of transition barriers
// needed to move a resource from its last known state to the state an
// upcoming command requires.
//
// One Tracker belongs to exactly one command list. It is not safe for
// concurrent use; command lists are recorded by a single goroutine.
package statetrack

// ResourceState is a bitmask of the ways a resource can be bound when a
// command executes. Multiple read states may be combined - a buffer can
// be both a vertex buffer and an index buffer at once - but any state
// containing a write bit must be used alone.
type ResourceState uint32

const (
	// StateCommon is the default state a resource starts in. Common-state
	// promotion (see Tracker.SetState) lets buffers and simultaneous-access
	// textures move from Common directly into most read states without a
	// barrier.
	StateCommon ResourceState = 0

	StateCopySource               ResourceState = 1 << iota
	StateCopyDest
	StateVertexAndConstantBuffer
	StateIndexBuffer
	StateIndirectArgument
	StateNonPixelShaderResource
	StatePixelShaderResource
	StateUnorderedAccess
	StateRenderTarget
	StateDepthWrite
	StateDepthRead
	StateRaytracingAccelerationStructure
)

var readStates = StateCopySource | StateVertexAndConstantBuffer | StateIndexBuffer |
	StateIndirectArgument | StateNonPixelShaderResource | StatePixelShaderResource |
	StateDepthRead | StateRaytracingAccelerationStructure

var writeStates = StateCopyDest | StateUnorderedAccess | StateRenderTarget | StateDepthWrite

// IsReadOnly reports whether every bit set in s is a read state.
func (s ResourceState) IsReadOnly() bool {
	return s&writeStates == 0
}

// IsEmpty reports whether s is the Common state.
func (s ResourceState) IsEmpty() bool {
	return s == StateCommon
}

// Contains reports whether every bit in other is also set in s.
func (s ResourceState) Contains(other ResourceState) bool {
	return s&other == other
}

// Kind distinguishes the resource families the tracker cares about.
// Only buffers and simultaneous-access textures are eligible for
// common-state promotion; ordinary (non-simultaneous-access) textures
// always require an explicit barrier out of Common.
type Kind uint8

const (
	KindBuffer Kind = iota
	KindTexture
	KindSimultaneousAccessTexture
)

// promotable reports whether resources of this kind may be implicitly
// promoted out of the Common state into a read state without a barrier.
func (k Kind) promotable() bool {
	return k == KindBuffer || k == KindSimultaneousAccessTexture
}
