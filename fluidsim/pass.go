package fluidsim

import (
	"fmt"

	"github.com/gogpu/rendergraph/core"
	"github.com/gogpu/rendergraph/hal"
	"github.com/gogpu/rendergraph/statetrack"
)

// DefaultPressureIterations is fluidSim.numPressureIterations' default.
const DefaultPressureIterations = 10

// MinPressureIterations and MaxPressureIterations bound
// fluidSim.numPressureIterations.
const (
	MinPressureIterations = 1
	MaxPressureIterations = 32
)

// Pass owns the eight compute pipelines and one render pipeline the
// fluid-volume simulation runs against, plus the bind-group layouts
// every simulation stage and the final render draw build their bind
// groups against: a root CBV for the volume's parameter buffer, a
// shader-resource table a stage reads its current field pair through,
// and an unordered-access table it writes its next field pair through.
type Pass struct {
	layout          core.BindGroupLayoutID
	layoutDef       core.BindGroupLayout
	renderLayout    core.BindGroupLayoutID
	renderLayoutDef core.BindGroupLayout

	advection            core.PipelineID
	buoyancy             core.PipelineID
	emitters             core.PipelineID
	extinguishment       core.PipelineID
	vorticityConfinement core.PipelineID
	divergence           core.PipelineID
	pressureSolve        core.PipelineID
	projection           core.PipelineID
	render               core.PipelineID

	// PressureIterations is fluidSim.numPressureIterations, clamped to
	// [MinPressureIterations, MaxPressureIterations].
	PressureIterations int
}

// NewPass registers the pass's pipelines against backend and returns a
// Pass ready to simulate fluid volumes. pressureIterations is clamped
// into the valid range rather than rejected, matching a console
// variable's clamp-on-set behaviour.
func NewPass(backend *core.Backend, pressureIterations int) *Pass {
	if pressureIterations < MinPressureIterations {
		pressureIterations = MinPressureIterations
	}
	if pressureIterations > MaxPressureIterations {
		pressureIterations = MaxPressureIterations
	}

	layoutDef := core.BindGroupLayout{
		Label: "fluid_sim_params",
		Slots: map[string]core.SlotLayout{
			"volume_params":  {RootParameterIndex: 0, Kind: core.RootParameterDescriptor, Descriptor: core.DescriptorConstantBuffer},
			"textures_read":  {RootParameterIndex: 1, Kind: core.RootParameterDescriptorTable, Descriptor: core.DescriptorShaderResource, NumElements: 8},
			"textures_write": {RootParameterIndex: 2, Kind: core.RootParameterDescriptorTable, Descriptor: core.DescriptorUnorderedAccess, NumElements: 8},
		},
	}
	renderLayoutDef := core.BindGroupLayout{
		Label: "fluid_sim_render",
		Slots: map[string]core.SlotLayout{
			"volume_params": {RootParameterIndex: 0, Kind: core.RootParameterDescriptor, Descriptor: core.DescriptorConstantBuffer},
			"textures":      {RootParameterIndex: 1, Kind: core.RootParameterDescriptorTable, Descriptor: core.DescriptorShaderResource, NumElements: 3},
		},
	}

	layout := backend.CreateBindGroupLayout(layoutDef)
	renderLayout := backend.CreateBindGroupLayout(renderLayoutDef)

	return &Pass{
		layout:               layout,
		layoutDef:            layoutDef,
		renderLayout:         renderLayout,
		renderLayoutDef:      renderLayoutDef,
		advection:            backend.CreateComputePipelineState(layout, "fluid_sim.advection"),
		buoyancy:             backend.CreateComputePipelineState(layout, "fluid_sim.buoyancy"),
		emitters:             backend.CreateComputePipelineState(layout, "fluid_sim.emitters"),
		extinguishment:       backend.CreateComputePipelineState(layout, "fluid_sim.extinguishment"),
		vorticityConfinement: backend.CreateComputePipelineState(layout, "fluid_sim.vorticity_confinement"),
		divergence:           backend.CreateComputePipelineState(layout, "fluid_sim.divergence"),
		pressureSolve:        backend.CreateComputePipelineState(layout, "fluid_sim.jacobi_pressure_solve"),
		projection:           backend.CreateComputePipelineState(layout, "fluid_sim.projection"),
		render:               backend.CreateRenderPipelineState(renderLayout, "fluid_sim.render"),
		PressureIterations:   pressureIterations,
	}
}

// PrepareWork validates that this frame's volume count fits within
// MaxFluidVolumes. It returns a *core.LimitError - and the caller must
// drop the entire frame's simulation work - rather than simulating a
// partial subset, since a partial update would leave some volumes'
// ping-pong pairs inconsistent for the next frame (breaking I6).
func (p *Pass) PrepareWork(volumes []*FluidVolume) error {
	if len(volumes) > MaxFluidVolumes {
		err := core.NewLimitError("FluidSimPass", "fluid volumes", uint64(len(volumes)), MaxFluidVolumes)
		hal.Logger().Error("fluid sim volume count exceeds limit, dropping frame", "count", len(volumes), "max", MaxFluidVolumes)
		return err
	}
	return nil
}

// RecordWork runs every stage of the fluid-volume pipeline, in order,
// for every volume in volumes. It must only be called after a
// successful PrepareWork.
func (p *Pass) RecordWork(cl *core.CommandList, volumes []*FluidVolume) error {
	for _, v := range volumes {
		if err := p.recordVolume(cl, v); err != nil {
			return fmt.Errorf("fluidsim: volume %q: %w", v.Desc.Label, err)
		}
	}
	return nil
}

const (
	fieldRead  = statetrack.StateNonPixelShaderResource
	fieldWrite = statetrack.StateUnorderedAccess
)

// recordVolume runs the full ten-stage pipeline for one volume: the
// eight simulation stages (section 1-8), then finalisation and
// rendering (stages 9-10). The two halves are split into their own
// methods because stage 9's own copy-in/copy-out transitions are a
// separate, unbudgeted cost on top of whatever recordSimulationStages
// leaves its fields in.
func (p *Pass) recordVolume(cl *core.CommandList, v *FluidVolume) error {
	if err := p.recordSimulationStages(cl, v); err != nil {
		return err
	}
	return p.recordFinalisationAndRender(cl, v)
}

// bindFields builds and binds a bind group over this volume's
// parameter buffer plus whichever field pair(s) the next dispatch reads
// and writes. Scratch is never bound this way - its curl/divergence
// role is tracked purely through direct
// SetTextureState calls (touchScratch below), since it is never read or
// written through the pipelines' bindless field tables.
func (p *Pass) bindFields(cl *core.CommandList, v *FluidVolume, reads, writes []core.TextureID) error {
	b := core.NewBindGroupBuilder(p.layout, p.layoutDef).
		SetBuffer("volume_params", v.ParamsBuffer, statetrack.StateVertexAndConstantBuffer)
	if len(reads) > 0 {
		b = b.SetTextureArray("textures_read", reads, fieldRead)
	}
	if len(writes) > 0 {
		b = b.SetTextureArray("textures_write", writes, fieldWrite)
	}
	bg, err := b.Build()
	if err != nil {
		return err
	}
	return cl.SetBindGroup(bg)
}

func (p *Pass) recordSimulationStages(cl *core.CommandList, v *FluidVolume) error {
	scratchState := fieldWrite

	dispatch := func(pipeline core.PipelineID) error {
		if err := cl.SetComputePipeline(pipeline); err != nil {
			return err
		}
		return cl.Dispatch(v.Desc.Width/8+1, v.Desc.Height/8+1, 1)
	}
	touchScratch := func() error {
		scratchState = flip(scratchState)
		_, err := cl.SetTextureState(v.Scratch, scratchState)
		return err
	}

	// 1. Advection: advect density, temperature, reaction and velocity
	// by the velocity field. All four pairs are read from their current
	// slot and written into their other slot, then swapped so the next
	// stage sees the freshly advected values as its read slot.
	if err := p.bindFields(cl, v, []core.TextureID{v.Density[0], v.Temperature[0], v.Reaction[0], v.Velocity[0]},
		[]core.TextureID{v.Density[1], v.Temperature[1], v.Reaction[1], v.Velocity[1]}); err != nil {
		return err
	}
	if err := dispatch(p.advection); err != nil {
		return err
	}
	if err := cl.BarrierAndSwap(&v.Density, fieldRead, fieldWrite); err != nil {
		return err
	}
	if err := cl.BarrierAndSwap(&v.Temperature, fieldRead, fieldWrite); err != nil {
		return err
	}
	if err := cl.BarrierAndSwap(&v.Reaction, fieldRead, fieldWrite); err != nil {
		return err
	}
	if err := cl.BarrierAndSwap(&v.Velocity, fieldRead, fieldWrite); err != nil {
		return err
	}

	// 2. Buoyancy: perturb velocity from temperature and density.
	if err := p.bindFields(cl, v, []core.TextureID{v.Velocity[0], v.Temperature[0], v.Density[0]}, []core.TextureID{v.Velocity[1]}); err != nil {
		return err
	}
	if err := dispatch(p.buoyancy); err != nil {
		return err
	}
	if err := cl.BarrierAndSwap(&v.Velocity, fieldRead, fieldWrite); err != nil {
		return err
	}

	// 3. Emitters: inject reaction and temperature at emitter locations.
	if err := p.bindFields(cl, v, []core.TextureID{v.Reaction[0], v.Temperature[0]}, []core.TextureID{v.Reaction[1], v.Temperature[1]}); err != nil {
		return err
	}
	if err := dispatch(p.emitters); err != nil {
		return err
	}
	if err := cl.BarrierAndSwap(&v.Reaction, fieldRead, fieldWrite); err != nil {
		return err
	}
	if err := cl.BarrierAndSwap(&v.Temperature, fieldRead, fieldWrite); err != nil {
		return err
	}

	// 4. Extinguishment: deposit density where reaction has burned out.
	if err := p.bindFields(cl, v, []core.TextureID{v.Density[0], v.Reaction[0]}, []core.TextureID{v.Density[1]}); err != nil {
		return err
	}
	if err := dispatch(p.extinguishment); err != nil {
		return err
	}
	if err := cl.BarrierAndSwap(&v.Density, fieldRead, fieldWrite); err != nil {
		return err
	}

	// 5. Vorticity + confinement: curl velocity into scratch, then apply
	// the confinement force it encodes back onto velocity. Two
	// dispatches against the same pipeline, one per sub-step, each with
	// its own scratch transition either side of the velocity swap.
	if err := p.bindFields(cl, v, []core.TextureID{v.Velocity[0]}, nil); err != nil {
		return err
	}
	if err := dispatch(p.vorticityConfinement); err != nil {
		return err
	}
	if err := touchScratch(); err != nil {
		return err
	}
	if err := p.bindFields(cl, v, []core.TextureID{v.Velocity[0]}, []core.TextureID{v.Velocity[1]}); err != nil {
		return err
	}
	if err := dispatch(p.vorticityConfinement); err != nil {
		return err
	}
	if err := cl.BarrierAndSwap(&v.Velocity, fieldRead, fieldWrite); err != nil {
		return err
	}
	if err := touchScratch(); err != nil {
		return err
	}

	// 6. Divergence: write divergence of velocity into scratch.
	if err := p.bindFields(cl, v, []core.TextureID{v.Velocity[0]}, nil); err != nil {
		return err
	}
	if err := dispatch(p.divergence); err != nil {
		return err
	}
	if err := touchScratch(); err != nil {
		return err
	}

	// 7. Pressure: Jacobi iteration, PressureIterations times, reading
	// and writing the pressure pair each time; scratch holds the
	// divergence residual throughout and is not re-bound per iteration.
	for i := 0; i < p.PressureIterations; i++ {
		if err := p.bindFields(cl, v, []core.TextureID{v.Pressure[0]}, []core.TextureID{v.Pressure[1]}); err != nil {
			return err
		}
		if err := dispatch(p.pressureSolve); err != nil {
			return err
		}
		if err := cl.BarrierAndSwap(&v.Pressure, fieldRead, fieldWrite); err != nil {
			return err
		}
	}

	// 8. Projection: subtract the pressure gradient from velocity,
	// consuming the scratch divergence field written in stage 6, then
	// transition scratch back to a writable state for the next frame's
	// divergence pass.
	if err := p.bindFields(cl, v, []core.TextureID{v.Velocity[0]}, []core.TextureID{v.Velocity[1]}); err != nil {
		return err
	}
	if err := dispatch(p.projection); err != nil {
		return err
	}
	if err := cl.BarrierAndSwap(&v.Velocity, fieldRead, fieldWrite); err != nil {
		return err
	}
	if err := touchScratch(); err != nil {
		return err
	}

	return nil
}

// recordFinalisationAndRender runs stage 9 (the odd-iteration-count
// pressure copy-back) and stage 10 (the indirect render draw). Stage
// 9's own copy-source/copy-dest transitions are not part of the
// simulation stages' own barrier accounting: CopyTexture always moves
// its two textures through copy states and back, on top of whatever
// state recordSimulationStages left them in.
func (p *Pass) recordFinalisationAndRender(cl *core.CommandList, v *FluidVolume) error {
	// 9. Finalisation: after an odd iteration count, copy the live
	// pressure data from the read slot (index 0, where the last swap
	// left it) into its pair. CopyTexture leaves the source readable and
	// the destination writable, restoring I6.
	if p.PressureIterations%2 != 0 {
		if err := cl.CopyTexture(v.Pressure[0], v.Pressure[1]); err != nil {
			return err
		}
	}

	// 10. Rendering: one indirect draw per volume against the shared
	// scene colour target, reading the volume's final density,
	// temperature and velocity fields.
	renderBuilder := core.NewBindGroupBuilder(p.renderLayout, p.renderLayoutDef).
		SetBuffer("volume_params", v.ParamsBuffer, statetrack.StateVertexAndConstantBuffer).
		SetTextureArray("textures", []core.TextureID{v.Density[0], v.Temperature[0], v.Velocity[0]}, fieldRead)
	renderGroup, err := renderBuilder.Build()
	if err != nil {
		return err
	}
	if err := cl.SetBindGroup(renderGroup); err != nil {
		return err
	}

	if err := cl.SetRenderPipeline(p.render); err != nil {
		return err
	}
	if err := cl.ExecuteIndirect(v.ParamsBuffer, 0, 1); err != nil {
		return err
	}

	return nil
}

func flip(s statetrack.ResourceState) statetrack.ResourceState {
	if s == fieldWrite {
		return fieldRead
	}
	return fieldWrite
}
