package core

import (
	"fmt"

	"github.com/gogpu/rendergraph/hal"
	"github.com/gogpu/rendergraph/statetrack"
)

// CommandListRecord is the stored, handle-addressable state of one
// command list: its native recording surface, its own state tracker,
// and the pipeline currently bound.
//
// The richer CommandList type below wraps a pointer to one of these
// together with the Tables and hal.Device it needs to resolve handles
// and build barriers; CommandListRecord itself holds only what must
// survive a Tables.GetCommandList / Tables.MutateCommandList round trip.
type CommandListRecord struct {
	Native  hal.CommandList
	Tracker *statetrack.Tracker
	Label   string
	Closed  bool

	boundPipeline Pipeline
	hasPipeline   bool
	callbacks     []func()
}

// CommandList is the recording surface user code interacts with: a
// thin wrapper that resolves bind groups and resources through Tables,
// builds barriers through the native Device, and forwards everything
// else straight to the native command list.
type CommandList struct {
	id      CommandListID
	tables  *Tables
	device  hal.Device
	record  *CommandListRecord
}

// NewCommandList opens a new command list against device, registers it
// in tables, and returns a recorder ready for use.
func NewCommandList(tables *Tables, device hal.Device, label string) (*CommandList, error) {
	native, err := device.CreateCommandList(label)
	if err != nil {
		return nil, &CreateCommandEncoderError{Label: label, HALError: err}
	}
	rec := CommandListRecord{
		Native:  native,
		Tracker: statetrack.New(),
		Label:   label,
	}
	id := tables.RegisterCommandList(rec)
	cl := &CommandList{id: id, tables: tables, device: device}
	// Tables stores CommandListRecord by value; keep a pointer to the
	// authoritative copy locally so every recording call on this
	// *CommandList mutates the same tracker without a table round trip
	// per call. The table copy is refreshed on Close.
	local := rec
	cl.record = &local
	return cl, nil
}

// CreateCommandEncoderError mirrors core.CreateBufferError's shape for
// command-list creation failures.
type CreateCommandEncoderError struct {
	Label    string
	HALError error
}

func (e *CreateCommandEncoderError) Error() string {
	return fmt.Sprintf("command list %q: native device error: %v", e.Label, e.HALError)
}

func (e *CreateCommandEncoderError) Unwrap() error { return e.HALError }

// ID returns the handle this recorder was registered under.
func (c *CommandList) ID() CommandListID { return c.id }

// NativeList exposes the underlying native command list, for callers
// (and tests) that need to inspect backend-specific recording state
// outside this package's own API, e.g. a noop backend's recorded
// barrier/dispatch counters.
func (c *CommandList) NativeList() hal.CommandList { return c.record.Native }

// Tracker exposes this list's state tracker, for callers (and tests)
// that need to assert a resource's recorded state directly rather than
// inferring it from barrier counts.
func (c *CommandList) Tracker() *statetrack.Tracker { return c.record.Tracker }

// SetComputePipeline binds a compute pipeline for subsequent Dispatch calls.
func (c *CommandList) SetComputePipeline(id PipelineID) error {
	p, err := c.tables.GetPipeline(id)
	if err != nil {
		return err
	}
	if p.Kind != PipelineKindCompute {
		return &StateViolationError{Resource: "CommandList", Message: "SetComputePipeline given a render pipeline"}
	}
	c.record.boundPipeline = p
	c.record.hasPipeline = true
	return nil
}

// SetRenderPipeline binds a render pipeline for subsequent Draw calls.
func (c *CommandList) SetRenderPipeline(id PipelineID) error {
	p, err := c.tables.GetPipeline(id)
	if err != nil {
		return err
	}
	if p.Kind != PipelineKindRender {
		return &StateViolationError{Resource: "CommandList", Message: "SetRenderPipeline given a compute pipeline"}
	}
	c.record.boundPipeline = p
	c.record.hasPipeline = true
	return nil
}

// SetBindGroup resolves bg's bound resources against this list's state
// tracker, recording the barriers needed to bring every resource it
// touches into the state the bind group requires, then submits those
// barriers to the native command list. Because bind groups are
// immutable once built, a resource's required state here can never
// drift from what it was at Build time.
func (c *CommandList) SetBindGroup(bg BindGroup) error {
	var barriers []hal.Barrier

	for _, use := range bg.UsedBuffers {
		buf, err := c.tables.GetBuffer(use.ID)
		if err != nil {
			return err
		}
		if b := c.record.Tracker.SetState(bufferKey(use.ID), statetrack.KindBuffer, use.Required); b != nil {
			barriers = append(barriers, c.device.MakeBufferBarrier(buf.Native, uint32(b.From), uint32(b.To)))
		}
	}
	for _, use := range bg.UsedTextures {
		tex, err := c.tables.GetTexture(use.ID)
		if err != nil {
			return err
		}
		if b := c.record.Tracker.SetState(statetrack.ResourceKey(use.ID.Raw()), tex.TrackerKind(), use.Required); b != nil {
			barriers = append(barriers, c.device.MakeTextureBarrier(tex.Native, uint32(b.From), uint32(b.To)))
		}
	}

	if len(barriers) > 0 {
		c.record.Native.ResourceBarrier(barriers)
	}
	return nil
}

// SetBufferState explicitly transitions a buffer not reached through a
// bind group (e.g. a copy source/destination) and returns whether a
// barrier was emitted.
func (c *CommandList) SetBufferState(id BufferID, required statetrack.ResourceState) (bool, error) {
	buf, err := c.tables.GetBuffer(id)
	if err != nil {
		return false, err
	}
	b := c.record.Tracker.SetState(bufferKey(id), statetrack.KindBuffer, required)
	if b == nil {
		return false, nil
	}
	c.record.Native.ResourceBarrier([]hal.Barrier{c.device.MakeBufferBarrier(buf.Native, uint32(b.From), uint32(b.To))})
	return true, nil
}

// bufferKey is a buffer's tracker key. Buffer and texture IDs come from
// separate registries and can share a raw value, so buffer keys carry
// the top bit; a texture's key is its raw ID.
func bufferKey(id BufferID) statetrack.ResourceKey {
	return statetrack.ResourceKey(id.Raw()) | 1<<63
}

// SetTextureState explicitly transitions a texture not reached through
// a bind group and returns whether a barrier was emitted.
func (c *CommandList) SetTextureState(id TextureID, required statetrack.ResourceState) (bool, error) {
	tex, err := c.tables.GetTexture(id)
	if err != nil {
		return false, err
	}
	b := c.record.Tracker.SetState(statetrack.ResourceKey(id.Raw()), tex.TrackerKind(), required)
	if b == nil {
		return false, nil
	}
	c.record.Native.ResourceBarrier([]hal.Barrier{c.device.MakeTextureBarrier(tex.Native, uint32(b.From), uint32(b.To))})
	return true, nil
}

// BarrierAndSwap is the ping-pong helper a multi-stage simulation pass
// uses between stages: it swaps the two texture handles a caller holds
// for a read/write field pair and, in the same step, records the single
// transition barrier each of the two textures needs as a result -
// exactly the "barrier_and_swap" pattern that keeps a handle swap and
// its paired transitions atomic from the tracker's point of view.
func (c *CommandList) BarrierAndSwap(handles *[2]TextureID, readState, writeState statetrack.ResourceState) error {
	handles[0], handles[1] = handles[1], handles[0]

	if _, err := c.SetTextureState(handles[0], readState); err != nil {
		return err
	}
	if _, err := c.SetTextureState(handles[1], writeState); err != nil {
		return err
	}
	return nil
}

// Dispatch issues a compute dispatch. A pipeline must have been bound
// with SetComputePipeline first.
func (c *CommandList) Dispatch(groupsX, groupsY, groupsZ uint32) error {
	if !c.record.hasPipeline || c.record.boundPipeline.Kind != PipelineKindCompute {
		return &StateViolationError{Resource: "CommandList", Message: "Dispatch with no compute pipeline bound"}
	}
	c.record.Native.Dispatch(groupsX, groupsY, groupsZ)
	return nil
}

// Draw issues a non-indexed draw call. A render pipeline must have been
// bound with SetRenderPipeline first.
func (c *CommandList) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) error {
	if !c.record.hasPipeline || c.record.boundPipeline.Kind != PipelineKindRender {
		return &StateViolationError{Resource: "CommandList", Message: "Draw with no render pipeline bound"}
	}
	c.record.Native.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
	return nil
}

// ExecuteIndirect dispatches or draws count times using arguments read
// from argBuffer, matching the fluid-sim pass's indirect per-volume
// dispatches and draws.
func (c *CommandList) ExecuteIndirect(argBuffer BufferID, argOffset uint64, count uint32) error {
	buf, err := c.tables.GetBuffer(argBuffer)
	if err != nil {
		return err
	}
	c.record.Native.ExecuteIndirect(buf.Native, argOffset, count)
	return nil
}

// CopyBuffer copies sizeBytes from src to dst, transitioning each
// through the state tracker into a copy state first.
func (c *CommandList) CopyBuffer(src, dst BufferID, sizeBytes, srcOffset, dstOffset uint64) error {
	srcBuf, err := c.tables.GetBuffer(src)
	if err != nil {
		return err
	}
	dstBuf, err := c.tables.GetBuffer(dst)
	if err != nil {
		return err
	}
	if _, err := c.SetBufferState(src, statetrack.StateCopySource); err != nil {
		return err
	}
	if _, err := c.SetBufferState(dst, statetrack.StateCopyDest); err != nil {
		return err
	}
	c.record.Native.CopyBuffer(srcBuf.Native, dstBuf.Native, sizeBytes, srcOffset, dstOffset)
	return nil
}

// CopyTexture copies the full contents of src into dst, transitioning
// each through the state tracker into a copy state first and restoring
// them to a shader-readable / writable state afterward - mirroring the
// fluid-sim pass's odd-pressure-iteration finalization copy.
func (c *CommandList) CopyTexture(src, dst TextureID) error {
	srcTex, err := c.tables.GetTexture(src)
	if err != nil {
		return err
	}
	dstTex, err := c.tables.GetTexture(dst)
	if err != nil {
		return err
	}
	if _, err := c.SetTextureState(src, statetrack.StateCopySource); err != nil {
		return err
	}
	if _, err := c.SetTextureState(dst, statetrack.StateCopyDest); err != nil {
		return err
	}
	c.record.Native.CopyTexture(srcTex.Native, dstTex.Native)
	if _, err := c.SetTextureState(src, statetrack.StateNonPixelShaderResource); err != nil {
		return err
	}
	if _, err := c.SetTextureState(dst, statetrack.StateUnorderedAccess); err != nil {
		return err
	}
	return nil
}

// BuildAccelerationStructure builds a raytracing acceleration structure
// over the given geometry buffers.
func (c *CommandList) BuildAccelerationStructure(vertexBuffer, indexBuffer BufferID, vertexCount, indexCount uint32) error {
	vb, err := c.tables.GetBuffer(vertexBuffer)
	if err != nil {
		return err
	}
	ib, err := c.tables.GetBuffer(indexBuffer)
	if err != nil {
		return err
	}
	c.record.Native.BuildAccelerationStructure(hal.AccelerationStructureDesc{
		VertexBuffer: vb.Native,
		IndexBuffer:  ib.Native,
		VertexCount:  vertexCount,
		IndexCount:   indexCount,
	})
	return nil
}

// AddCompletionCallback registers fn to run once this command list's
// frame has fully retired (see Scheduler.RetireFrame).
func (c *CommandList) AddCompletionCallback(fn func()) {
	c.record.callbacks = append(c.record.callbacks, fn)
}

// Close ends recording, flushes the local tracker state back into
// Tables, and returns the native command list for submission.
func (c *CommandList) Close() (hal.CommandList, []func(), error) {
	if c.record.Closed {
		return nil, nil, &StateViolationError{Resource: "CommandList", Message: "Close called twice"}
	}
	if err := c.record.Native.Close(); err != nil {
		return nil, nil, err
	}
	c.record.Closed = true
	if err := c.tables.MutateCommandList(c.id, func(r *CommandListRecord) { *r = *c.record }); err != nil {
		return nil, nil, err
	}
	return c.record.Native, c.record.callbacks, nil
}
