package core

import (
	"github.com/gogpu/rendergraph/statetrack"
)

// RootParameterKind distinguishes how a named slot in a bind-group
// layout reaches the shader: as a root descriptor bound directly on the
// command list, or as an entry in a descriptor table pointed to by a
// root parameter.
type RootParameterKind uint8

const (
	RootParameterEmpty RootParameterKind = iota
	RootParameterDescriptor
	RootParameterDescriptorTable
)

// DescriptorKind is the shader-visible view kind a slot expects.
type DescriptorKind uint8

const (
	DescriptorConstantBuffer DescriptorKind = iota
	DescriptorShaderResource
	DescriptorUnorderedAccess
)

// SlotLayout describes one named binding slot in a BindGroupLayout.
type SlotLayout struct {
	RootParameterIndex uint32
	Kind               RootParameterKind
	Descriptor         DescriptorKind
	// NumElements is the descriptor-table array length for a
	// DescriptorShaderResource texture-array slot; unused otherwise.
	NumElements uint32
}

// BindGroupLayout is the immutable map from binding names to root
// parameters, produced once at pipeline-creation time and shared by
// every BindGroupBuilder built against it.
type BindGroupLayout struct {
	Label string
	Slots map[string]SlotLayout
}

// boundBuffer and boundTexture record a resource bound into a bind group
// together with the state the state tracker must see it transitioned
// into before the draw/dispatch that uses this bind group executes.
type boundBuffer struct {
	slot     string
	id       BufferID
	required statetrack.ResourceState
}

type boundTexture struct {
	slot     string
	ids      []TextureID
	required statetrack.ResourceState
}

// ResolvedSlot is one entry of a built BindGroup: a root parameter index
// paired with either a direct resource (root descriptor) or a
// descriptor-table range start (written by the bind-group builder at
// Build time).
type ResolvedSlot struct {
	Slot               string
	RootParameterIndex uint32
	Kind               RootParameterKind
	BufferID           BufferID  // valid when the slot bound a buffer
	TableStart         uint32    // valid when Kind == RootParameterDescriptorTable
	TableCount         uint32
}

// BindGroup is the immutable result of BindGroupBuilder.Build. Once
// built it cannot be modified - rebinding a different resource requires
// building a new bind group - which is what lets the state tracker
// trust that every resource a bind group names stays in the state it
// was built with for the group's entire lifetime.
type BindGroup struct {
	Layout       BindGroupLayoutID
	Slots        []ResolvedSlot
	UsedBuffers  []boundBufferUsage
	UsedTextures []boundTextureUsage
}

// boundBufferUsage and boundTextureUsage are the state-tracker-facing
// view of what a bind group touches: used by CommandList.SetBindGroup
// to push the required transitions before the next draw or dispatch.
type boundBufferUsage struct {
	ID       BufferID
	Required statetrack.ResourceState
}

type boundTextureUsage struct {
	ID       TextureID
	Required statetrack.ResourceState
}

// BindGroupBuilder accumulates resource bindings against a layout and
// produces an immutable BindGroup. It mirrors the permissive,
// map-based binding model of a descriptor-driven render backend:
// setting an unknown slot name is an error, but leaving a declared slot
// unset is only a logged warning, not a build failure - a pipeline may
// legitimately not use every slot its layout makes available.
type BindGroupBuilder struct {
	layoutID BindGroupLayoutID
	layout   BindGroupLayout
	set      map[string]bool
	slots    []ResolvedSlot
	buffers  []boundBufferUsage
	textures []boundTextureUsage
	tableCur uint32
	err      error
}

// NewBindGroupBuilder starts building a bind group against layout.
func NewBindGroupBuilder(layoutID BindGroupLayoutID, layout BindGroupLayout) *BindGroupBuilder {
	return &BindGroupBuilder{
		layoutID: layoutID,
		layout:   layout,
		set:      make(map[string]bool, len(layout.Slots)),
	}
}

// SetBuffer binds buffer id to the named slot, requiring it be in state
// required by the time this bind group is used.
func (b *BindGroupBuilder) SetBuffer(name string, id BufferID, required statetrack.ResourceState) *BindGroupBuilder {
	if b.err != nil {
		return b
	}
	slot, ok := b.layout.Slots[name]
	if !ok {
		b.err = NewValidationErrorf("BindGroup", name, "no such slot in layout %q", b.layout.Label)
		return b
	}

	rs := ResolvedSlot{Slot: name, RootParameterIndex: slot.RootParameterIndex, Kind: slot.Kind, BufferID: id}
	if slot.Kind == RootParameterDescriptorTable {
		rs.TableStart = b.tableCur
		rs.TableCount = 1
		b.tableCur++
	}
	b.slots = append(b.slots, rs)
	b.buffers = append(b.buffers, boundBufferUsage{ID: id, Required: required})
	b.set[name] = true
	return b
}

// SetTexture binds a single texture to the named slot.
func (b *BindGroupBuilder) SetTexture(name string, id TextureID, required statetrack.ResourceState) *BindGroupBuilder {
	return b.SetTextureArray(name, []TextureID{id}, required)
}

// SetTextureArray binds an array of textures to the named
// descriptor-table slot, matching the bindless textures-array root
// parameter a fluid-sim pass reads its ping-pong fields through.
func (b *BindGroupBuilder) SetTextureArray(name string, ids []TextureID, required statetrack.ResourceState) *BindGroupBuilder {
	if b.err != nil {
		return b
	}
	slot, ok := b.layout.Slots[name]
	if !ok {
		b.err = NewValidationErrorf("BindGroup", name, "no such slot in layout %q", b.layout.Label)
		return b
	}

	rs := ResolvedSlot{Slot: name, RootParameterIndex: slot.RootParameterIndex, Kind: slot.Kind, TableStart: b.tableCur, TableCount: uint32(len(ids))}
	b.tableCur += uint32(len(ids))
	b.slots = append(b.slots, rs)
	for _, id := range ids {
		b.textures = append(b.textures, boundTextureUsage{ID: id, Required: required})
	}
	b.set[name] = true
	return b
}

// Build finalizes the bind group. It fails only if a prior Set call
// named a slot the layout doesn't declare; a declared slot that was
// never set is logged at warn level and simply excluded from the
// result, since BindGroup.Slots is sparse by name, not by index.
func (b *BindGroupBuilder) Build() (BindGroup, error) {
	if b.err != nil {
		return BindGroup{}, b.err
	}
	for name := range b.layout.Slots {
		if !b.set[name] {
			debugWarn("bind group slot left unbound", "layout", b.layout.Label, "slot", name)
		}
	}
	return BindGroup{
		Layout:       b.layoutID,
		Slots:        b.slots,
		UsedBuffers:  b.buffers,
		UsedTextures: b.textures,
	}, nil
}
