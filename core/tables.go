package core

// Tables is the central resource table for the executor: one Registry
// per resource kind. Buffers and textures carry their own frame-slot
// count, so their deferred-destruction queues live on the registries
// themselves (see Registry.Schedule / Registry.RetireFrame); the other
// kinds are destroyed immediately and never schedule against a frame
// slot.
type Tables struct {
	buffers          *Registry[Buffer, bufferMarker]
	textures         *Registry[Texture, textureMarker]
	bindGroupLayouts *Registry[BindGroupLayout, bindGroupLayoutMarker]
	bindGroups       *Registry[BindGroup, bindGroupMarker]
	pipelines        *Registry[Pipeline, pipelineMarker]
	commandLists     *Registry[CommandListRecord, commandListMarker]
}

// NewTables creates an empty resource table sized for framesInFlight
// concurrently in-flight frames.
func NewTables(framesInFlight int) *Tables {
	return &Tables{
		buffers:          NewRegistry[Buffer, bufferMarker](framesInFlight),
		textures:         NewRegistry[Texture, textureMarker](framesInFlight),
		bindGroupLayouts: NewRegistry[BindGroupLayout, bindGroupLayoutMarker](0),
		bindGroups:       NewRegistry[BindGroup, bindGroupMarker](0),
		pipelines:        NewRegistry[Pipeline, pipelineMarker](0),
		commandLists:     NewRegistry[CommandListRecord, commandListMarker](0),
	}
}

// RegisterBuffer stores a live buffer and returns its handle.
func (t *Tables) RegisterBuffer(b Buffer) BufferID {
	id := t.buffers.Register(b)
	trackResource(uintptr(id.Raw()), "Buffer")
	return id
}

// GetBuffer resolves a buffer handle. It returns ErrInvalidID for a zero
// handle, ErrEpochMismatch for a stale handle whose slot was recycled,
// or ErrResourceNotFound if the index was never valid.
func (t *Tables) GetBuffer(id BufferID) (Buffer, error) {
	return t.buffers.Get(id)
}

// RegisterTexture stores a live texture and returns its handle.
func (t *Tables) RegisterTexture(tex Texture) TextureID {
	id := t.textures.Register(tex)
	trackResource(uintptr(id.Raw()), "Texture")
	return id
}

// GetTexture resolves a texture handle.
func (t *Tables) GetTexture(id TextureID) (Texture, error) {
	return t.textures.Get(id)
}

// RegisterBindGroupLayout stores a bind-group layout and returns its handle.
func (t *Tables) RegisterBindGroupLayout(l BindGroupLayout) BindGroupLayoutID {
	return t.bindGroupLayouts.Register(l)
}

// GetBindGroupLayout resolves a bind-group layout handle.
func (t *Tables) GetBindGroupLayout(id BindGroupLayoutID) (BindGroupLayout, error) {
	return t.bindGroupLayouts.Get(id)
}

// RegisterBindGroup stores a built, immutable bind group and returns its handle.
func (t *Tables) RegisterBindGroup(g BindGroup) BindGroupID {
	return t.bindGroups.Register(g)
}

// GetBindGroup resolves a bind-group handle.
func (t *Tables) GetBindGroup(id BindGroupID) (BindGroup, error) {
	return t.bindGroups.Get(id)
}

// RegisterPipeline stores a pipeline state object and returns its handle.
func (t *Tables) RegisterPipeline(p Pipeline) PipelineID {
	return t.pipelines.Register(p)
}

// GetPipeline resolves a pipeline handle.
func (t *Tables) GetPipeline(id PipelineID) (Pipeline, error) {
	return t.pipelines.Get(id)
}

// RegisterCommandList stores an open command-list record and returns its handle.
func (t *Tables) RegisterCommandList(c CommandListRecord) CommandListID {
	return t.commandLists.Register(c)
}

// GetCommandList resolves a command-list handle.
func (t *Tables) GetCommandList(id CommandListID) (CommandListRecord, error) {
	return t.commandLists.Get(id)
}

// MutateCommandList applies fn to the stored command-list record in place.
func (t *Tables) MutateCommandList(id CommandListID, fn func(*CommandListRecord)) error {
	return t.commandLists.GetMut(id, fn)
}

// UnregisterCommandList removes a command-list record once its frame has
// been submitted; command lists are not subject to deferred destruction
// since they hold no GPU-visible contents after submission.
func (t *Tables) UnregisterCommandList(id CommandListID) {
	_, _ = t.commandLists.Unregister(id)
}

// ScheduleDestroyBuffer enqueues id for destruction when frameSlot next
// retires. The handle (and the resource it names) remains valid for
// lookups until that happens - destroying a buffer never invalidates
// in-flight command lists that already reference it.
func (t *Tables) ScheduleDestroyBuffer(frameSlot int, id BufferID) {
	t.buffers.Schedule(frameSlot, id)
}

// ScheduleDestroyTexture enqueues id for destruction when frameSlot next retires.
func (t *Tables) ScheduleDestroyTexture(frameSlot int, id TextureID) {
	t.textures.Schedule(frameSlot, id)
}

// RetireFrame unregisters every resource scheduled for destruction
// against frameSlot, releasing the underlying native resources and
// freeing their handle slots for reuse.
func (t *Tables) RetireFrame(frameSlot int) {
	t.buffers.RetireFrame(frameSlot, func(id BufferID, b Buffer) {
		if b.Native != nil {
			b.Native.Destroy()
		}
		untrackResource(uintptr(id.Raw()))
	})
	t.textures.RetireFrame(frameSlot, func(id TextureID, tex Texture) {
		if tex.Native != nil {
			tex.Native.Destroy()
		}
		untrackResource(uintptr(id.Raw()))
	})
}
