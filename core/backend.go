package core

import (
	"fmt"
	"sync"

	"github.com/gogpu/rendergraph/descriptor"
	"github.com/gogpu/rendergraph/hal"
)

// Backend is the top-level entry point: it owns the native device, the
// resource tables, the frame scheduler, and the three descriptor
// allocators (CBV/SRV/UAV, RTV, DSV), and exposes the operations a
// render pass records against.
type Backend struct {
	device hal.Device
	tables *Tables
	sched  *Scheduler
	config Config

	cbvSrvUavAllocator *descriptor.Allocator
	rtvAllocator       *descriptor.Allocator
	dsvAllocator       *descriptor.Allocator

	stagingMu   sync.Mutex
	stagingPool []*stagingEntry
	// stagingFree[slot] holds buffers returned during frame slot that
	// are destroyed once that slot next retires, mirroring "index 0 gets
	// freed on the next frame 0, index 1 gets freed on the next frame 1"
	// deferred-release semantics.
	stagingFree [][]*stagingEntry
}

type stagingEntry struct {
	id        BufferID
	sizeBytes uint64
	onReturn  func()
}

// NewBackend wires a native device into a fully configured executor.
func NewBackend(device hal.Device, config Config) (*Backend, error) {
	tables := NewTables(config.MaxInFlightGpuFrames)
	sched, err := NewScheduler(device, tables, config.MaxInFlightGpuFrames)
	if err != nil {
		return nil, err
	}

	cbvHeap, err := device.CreateDescriptorHeap(config.DescriptorHeapSize, "cbv_srv_uav heap")
	if err != nil {
		return nil, fmt.Errorf("core: creating CBV/SRV/UAV heap: %w", err)
	}
	_ = cbvHeap // the allocator only tracks index ranges; writes go through hal.DescriptorHeap directly.

	b := &Backend{
		device:             device,
		tables:             tables,
		sched:              sched,
		config:             config,
		cbvSrvUavAllocator: descriptor.New(config.DescriptorHeapSize),
		rtvAllocator:       descriptor.New(256),
		dsvAllocator:       descriptor.New(256),
		stagingFree:        make([][]*stagingEntry, config.MaxInFlightGpuFrames),
	}

	SetDebugMode(config.EnableGpuValidation)
	SetBreakOnValidationError(config.BreakOnValidationError)
	return b, nil
}

// CreateBuffer allocates a new buffer. Failure is a recoverable
// CreationFailure: it is returned as an error and no handle is
// registered, matching spec 7's "logged, caller continues" semantics.
func (b *Backend) CreateBuffer(desc BufferDescriptor) (BufferID, error) {
	if desc.SizeBytes == 0 {
		return BufferID{}, &CreateBufferError{Kind: CreateBufferErrorZeroSize, Label: desc.Label}
	}
	native, err := b.device.CreateBuffer(desc.SizeBytes, desc.Label)
	if err != nil {
		return BufferID{}, &CreateBufferError{Kind: CreateBufferErrorHAL, Label: desc.Label, HALError: err}
	}
	id := b.tables.RegisterBuffer(Buffer{Native: native, SizeBytes: desc.SizeBytes, Usage: desc.Usage, Label: desc.Label})
	return id, nil
}

// CreateTexture allocates a new texture.
func (b *Backend) CreateTexture(desc TextureDescriptor) (TextureID, error) {
	native, err := b.device.CreateTexture(desc.Width, desc.Height, desc.DepthOrArrayLayers, desc.MipLevels, uint32(desc.Format), desc.Label)
	if err != nil {
		return TextureID{}, &CreateTextureError{Label: desc.Label, HALError: err}
	}
	id := b.tables.RegisterTexture(Texture{
		Native:             native,
		Width:              desc.Width,
		Height:             desc.Height,
		DepthOrArrayLayers: desc.DepthOrArrayLayers,
		MipLevels:          desc.MipLevels,
		Format:             desc.Format,
		SimultaneousAccess: desc.SimultaneousAccess,
	})
	return id, nil
}

// CreateRenderTargetView allocates an RTV descriptor range for tex.
func (b *Backend) CreateRenderTargetView(tex TextureID) (DescriptorRangeRecord, error) {
	r, err := b.rtvAllocator.Allocate(1)
	if err != nil {
		return DescriptorRangeRecord{}, err
	}
	return DescriptorRangeRecord{HeapStart: r.Start, Count: r.Count, Kind: DescriptorRangeRTV}, nil
}

// CreateDepthStencilView allocates a DSV descriptor range for tex.
func (b *Backend) CreateDepthStencilView(tex TextureID) (DescriptorRangeRecord, error) {
	r, err := b.dsvAllocator.Allocate(1)
	if err != nil {
		return DescriptorRangeRecord{}, err
	}
	return DescriptorRangeRecord{HeapStart: r.Start, Count: r.Count, Kind: DescriptorRangeDSV}, nil
}

// ScheduleBufferDestruction enqueues id to be destroyed once the
// current frame slot next retires.
func (b *Backend) ScheduleBufferDestruction(id BufferID) {
	b.tables.ScheduleDestroyBuffer(b.sched.CurrentFrameSlot(), id)
}

// ScheduleTextureDestruction enqueues id to be destroyed once the
// current frame slot next retires.
func (b *Backend) ScheduleTextureDestruction(id TextureID) {
	b.tables.ScheduleDestroyTexture(b.sched.CurrentFrameSlot(), id)
}

// CreateComputePipelineState registers an opaque compute pipeline built
// against layout.
func (b *Backend) CreateComputePipelineState(layout BindGroupLayoutID, label string) PipelineID {
	return b.tables.RegisterPipeline(Pipeline{Kind: PipelineKindCompute, Layout: layout, Label: label})
}

// CreateRenderPipelineState registers an opaque render pipeline built
// against layout.
func (b *Backend) CreateRenderPipelineState(layout BindGroupLayoutID, label string) PipelineID {
	return b.tables.RegisterPipeline(Pipeline{Kind: PipelineKindRender, Layout: layout, Label: label})
}

// CreateBindGroupLayout registers a new bind-group layout.
func (b *Backend) CreateBindGroupLayout(layout BindGroupLayout) BindGroupLayoutID {
	return b.tables.RegisterBindGroupLayout(layout)
}

// NewBindGroupBuilder starts building a bind group against a registered layout.
func (b *Backend) NewBindGroupBuilder(layoutID BindGroupLayoutID) (*BindGroupBuilder, error) {
	layout, err := b.tables.GetBindGroupLayout(layoutID)
	if err != nil {
		return nil, err
	}
	return NewBindGroupBuilder(layoutID, layout), nil
}

// RegisterBindGroup stores a built bind group and returns its handle.
func (b *Backend) RegisterBindGroup(g BindGroup) BindGroupID {
	return b.tables.RegisterBindGroup(g)
}

// CreateCommandList opens a new command list recorder.
func (b *Backend) CreateCommandList(label string) (*CommandList, error) {
	return NewCommandList(b.tables, b.device, label)
}

// SubmitCommandList closes list and enqueues it for submission at the
// next EndFrame.
func (b *Backend) SubmitCommandList(list *CommandList) error {
	native, callbacks, err := list.Close()
	if err != nil {
		return err
	}
	b.sched.SubmitCommandList(native, callbacks)
	return nil
}

// BeginFrame advances the frame ring (see Scheduler.BeginFrame).
func (b *Backend) BeginFrame() error {
	if err := b.sched.BeginFrame(); err != nil {
		return err
	}
	slot := b.sched.CurrentFrameSlot()
	b.stagingMu.Lock()
	freed := b.stagingFree[slot]
	b.stagingFree[slot] = nil
	b.stagingMu.Unlock()
	for _, e := range freed {
		if e.onReturn != nil {
			e.onReturn()
		}
	}
	return nil
}

// EndFrame flushes and presents the current frame (see Scheduler.EndFrame).
func (b *Backend) EndFrame() error {
	return b.sched.EndFrame()
}

// GetCurGpuFrameIdx returns the frame-ring slot currently open for recording.
func (b *Backend) GetCurGpuFrameIdx() int {
	return b.sched.CurrentFrameSlot()
}

// GetStagingBuffer allocates a new CPU-writable buffer of sizeBytes, for
// uploading data that will be consumed this frame. Every call creates a
// fresh buffer; buffers handed back through ReturnStagingBuffer are not
// reissued.
func (b *Backend) GetStagingBuffer(sizeBytes uint64) (BufferID, error) {
	id, err := b.CreateBuffer(BufferDescriptor{Label: "staging", SizeBytes: sizeBytes, Usage: BufferUsageStaging})
	if err != nil {
		return BufferID{}, err
	}
	return id, nil
}

// ReturnStagingBuffer destroys a staging buffer once the GPU has
// finished consuming it - deferred to the frame slot's next retirement,
// not the call site, since the GPU may still be reading it. The buffer
// is not kept for reuse by a later GetStagingBuffer.
func (b *Backend) ReturnStagingBuffer(id BufferID, sizeBytes uint64) {
	slot := b.sched.CurrentFrameSlot()
	b.stagingMu.Lock()
	b.stagingFree[slot] = append(b.stagingFree[slot], &stagingEntry{
		id:        id,
		sizeBytes: sizeBytes,
		// Runs from BeginFrame once this slot's fence has been waited on,
		// so the GPU is done with the buffer and it is released at once.
		onReturn: func() {
			if buf, err := b.tables.buffers.Unregister(id); err == nil {
				if buf.Native != nil {
					buf.Native.Destroy()
				}
				untrackResource(uintptr(id.Raw()))
			}
		},
	})
	b.stagingMu.Unlock()
}

// Tables exposes the resource table for packages (e.g. fluidsim) that
// need to resolve handles directly.
func (b *Backend) Tables() *Tables { return b.tables }

// Device exposes the native device for packages that need to build
// barriers or issue native-specific calls outside the CommandList API.
func (b *Backend) Device() hal.Device { return b.device }

// Destroy tears down the backend and its native device.
func (b *Backend) Destroy() {
	b.device.Destroy()
}
