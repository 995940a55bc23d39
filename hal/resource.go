package hal

// Resource is the base interface for all native GPU objects handed back
// to the resource tables. Resources must be explicitly destroyed to free
// GPU memory.
type Resource interface {
	// Destroy releases the native GPU resource.
	// After this call, the resource must not be used.
	// Calling Destroy multiple times is undefined behavior.
	Destroy()
}

// Buffer is a native, backend-owned GPU buffer.
type Buffer interface {
	Resource
}

// Texture is a native, backend-owned GPU texture.
type Texture interface {
	Resource
}

// DescriptorHeap is a contiguous, backend-owned range of shader-visible
// descriptor slots. Bind-group building writes descriptors into ranges
// carved out of a heap by the descriptor allocator.
type DescriptorHeap interface {
	Resource

	// WriteConstantBufferView writes a CBV into the given slot of the heap.
	WriteConstantBufferView(slot uint32, buf Buffer, offset, size uint64)
	// WriteShaderResourceView writes an SRV into the given slot of the heap.
	WriteShaderResourceView(slot uint32, buf Buffer, format uint32)
	// WriteShaderResourceViewTexture writes a texture SRV into the given slot.
	WriteShaderResourceViewTexture(slot uint32, tex Texture)
	// WriteUnorderedAccessView writes a UAV into the given slot of the heap.
	WriteUnorderedAccessView(slot uint32, tex Texture)
}

// Fence is a GPU synchronization primitive used by the frame scheduler to
// know when a frame's submitted work has retired.
type Fence interface {
	Resource

	// CompletedValue returns the last value the GPU has signaled.
	CompletedValue() uint64
	// Wait blocks the calling goroutine until the fence reaches value.
	Wait(value uint64) error
}

// CommandList is a native, backend-owned recorder of GPU commands.
// core.CommandList wraps this with a state tracker and bind-group
// resolution; CommandList itself is a thin native recording surface.
type CommandList interface {
	Resource

	// ResourceBarrier submits a batch of opaque transition barriers.
	// The barrier contents are backend-specific; core.CommandList builds
	// them via Device.MakeBufferBarrier / Device.MakeTextureBarrier.
	ResourceBarrier(barriers []Barrier)
	// Dispatch issues a compute dispatch with the given thread-group
	// counts against whatever pipeline the caller has bound through the
	// backend's own pipeline-binding call. hal.Device has no notion of
	// pipeline objects; core.CommandList validates a compute pipeline is
	// bound before forwarding here.
	Dispatch(groupsX, groupsY, groupsZ uint32)
	// Draw issues a non-indexed draw call against whatever render
	// pipeline the caller has bound.
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	// ExecuteIndirect dispatches or draws count times using arguments
	// read from argBuffer starting at argOffset. The argument layout is
	// backend-specific; this module only ever forwards the buffer and
	// count.
	ExecuteIndirect(argBuffer Buffer, argOffset uint64, count uint32)
	// CopyBuffer copies size bytes from src to dst.
	CopyBuffer(src, dst Buffer, size, srcOffset, dstOffset uint64)
	// CopyTexture copies the full contents of src into dst. Both must
	// have matching dimensions; the native backend validates this.
	CopyTexture(src, dst Texture)
	// BuildAccelerationStructure builds or updates a raytracing
	// acceleration structure over desc's geometry.
	BuildAccelerationStructure(desc AccelerationStructureDesc)
	// Close ends recording. The list becomes submittable.
	Close() error
}

// AccelerationStructureDesc describes the geometry a raytracing
// acceleration structure is built over. The geometry's exact layout is
// opaque to this module; only the resources that must be tracked for
// barrier purposes matter here.
type AccelerationStructureDesc struct {
	VertexBuffer Buffer
	IndexBuffer  Buffer
	VertexCount  uint32
	IndexCount   uint32
}

// Barrier is an opaque, backend-produced transition description. The
// state tracker never inspects its contents; it only ever batches and
// forwards what Device.MakeBufferBarrier / MakeTextureBarrier produced.
type Barrier struct {
	// Backend is an opaque payload defined by the native backend
	// (e.g. a D3D12_RESOURCE_BARRIER analogue).
	Backend any
}

// Device is the narrow native-driver surface the rest of the module is
// built on: enough to allocate resources, build barriers, and submit
// recorded work. It intentionally has no notion of windows, surfaces,
// or presentation.
type Device interface {
	// CreateBuffer allocates a native buffer of the given size.
	CreateBuffer(sizeBytes uint64, label string) (Buffer, error)
	// CreateTexture allocates a native texture.
	CreateTexture(width, height, depth uint32, mipLevels uint32, format uint32, label string) (Texture, error)
	// CreateDescriptorHeap allocates a block of shader-visible descriptors.
	CreateDescriptorHeap(numDescriptors uint32, label string) (DescriptorHeap, error)
	// CreateCommandList allocates a native command list ready for recording.
	CreateCommandList(label string) (CommandList, error)
	// CreateFence allocates a native fence starting at initial value.
	CreateFence(initial uint64) (Fence, error)

	// MakeBufferBarrier builds an opaque transition barrier for a buffer.
	MakeBufferBarrier(buf Buffer, from, to uint32) Barrier
	// MakeTextureBarrier builds an opaque transition barrier for a texture.
	MakeTextureBarrier(tex Texture, from, to uint32) Barrier

	// Submit submits a batch of closed command lists for execution and
	// returns once they have been enqueued on the device timeline.
	Submit(lists []CommandList) error
	// SignalFence schedules a signal of fence to value after all
	// previously submitted work completes.
	SignalFence(f Fence, value uint64) error

	// Destroy releases the device and all backend-global state.
	Destroy()
}
