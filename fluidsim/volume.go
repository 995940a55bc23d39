// Package fluidsim implements the multi-stage GPU fluid-volume
// simulation pass: advection, buoyancy, emitters, extinguishment,
// vorticity confinement, divergence, pressure solve, projection,
// finalisation, and an indirect-draw render stage, all built on top of
// core's command-list recorder and state tracker.
//
// The pass reproduces the pipeline and barrier schedule of a real-time
// fire/smoke renderer; it does not reproduce the shader math itself -
// every stage dispatches an opaque compute pipeline and lets the state
// tracker do the work of keeping each fluid volume's ping-pong pairs in
// the {shader-resource, unordered-access} configuration I6 requires.
package fluidsim

import (
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/rendergraph/core"
)

// MaxFluidVolumes bounds how many volumes a single frame's simulation
// work may cover. Exceeding it drops the entire frame's simulation work
// rather than partially updating a subset, since a partial update would
// leave some volumes' ping-pong pairs in an inconsistent state for the
// next frame.
const MaxFluidVolumes = 64

// FluidVolumeDescriptor describes the static configuration of one fluid
// volume: its grid dimensions and the per-field coefficients the
// simulation stages read through the per-volume parameter buffer.
type FluidVolumeDescriptor struct {
	Label string

	Width, Height, Depth uint32

	DensityDissipation     float32
	TemperatureDissipation float32
	ReactionDissipation    float32
	VelocityDissipation    float32

	TemperatureDecay float32

	Buoyancy float32
	Weight   float32

	EmitterPositionX, EmitterPositionY, EmitterPositionZ float32
	EmitterRadius                                        float32
	EmitterStrength                                       float32

	ExtinguishmentThreshold float32
	VorticityStrength       float32
}

// FluidVolume is one live, simulated volume: a ping-pong pair of
// textures per scalar field, plus a single scratch texture shared by
// the curl and divergence stages, and the descriptor it
// was created from.
//
// Index 0 of each pair is always the current "read" (shader-resource)
// handle and index 1 the current "write" (unordered-access) handle;
// CommandList.BarrierAndSwap keeps this true across every stage.
type FluidVolume struct {
	Desc FluidVolumeDescriptor

	Density     [2]core.TextureID
	Temperature [2]core.TextureID
	Reaction    [2]core.TextureID
	Velocity    [2]core.TextureID
	Pressure    [2]core.TextureID

	// Scratch holds curl, then divergence, in turn - one texture reused
	// across stages since none of its consumers overlap within a single
	// frame.
	Scratch core.TextureID

	// ParamsBuffer is this volume's slot in the per-stage ring of
	// per-frame parameter buffers; record_work writes this volume's
	// descriptor fields here and stages address it via a root-constant
	// data index.
	ParamsBuffer core.BufferID
}

// CreateFluidVolume allocates every texture a fluid volume needs
// through backend and returns a FluidVolume ready to be simulated.
// Ping-pair textures are allocated as regular (non-simultaneous-access)
// 3D textures, since the pass relies on explicit barrier_and_swap
// transitions rather than simultaneous access.
//
// The eleven texture allocations run concurrently across an errgroup:
// resource creation is guarded by Tables' own locking, so fanning the
// calls out across goroutines is safe and mirrors how an asset-loading
// worker pool would populate a volume's fields without blocking the
// render thread.
func CreateFluidVolume(backend *core.Backend, desc FluidVolumeDescriptor) (*FluidVolume, error) {
	v := &FluidVolume{Desc: desc}

	slots := []struct {
		label string
		dst   *core.TextureID
	}{
		{"density", &v.Density[0]}, {"density", &v.Density[1]},
		{"temperature", &v.Temperature[0]}, {"temperature", &v.Temperature[1]},
		{"reaction", &v.Reaction[0]}, {"reaction", &v.Reaction[1]},
		{"velocity", &v.Velocity[0]}, {"velocity", &v.Velocity[1]},
		{"pressure", &v.Pressure[0]}, {"pressure", &v.Pressure[1]},
		{"scratch", &v.Scratch},
	}

	var g errgroup.Group
	for _, s := range slots {
		s := s
		g.Go(func() error {
			tex, err := backend.CreateTexture(core.TextureDescriptor{
				Label:              s.label,
				Width:              desc.Width,
				Height:             desc.Height,
				DepthOrArrayLayers: desc.Depth,
				MipLevels:          1,
			})
			if err != nil {
				return err
			}
			*s.dst = tex
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	params, err := backend.CreateBuffer(core.BufferDescriptor{
		Label:     "fluid_sim_params",
		SizeBytes: fluidVolumeParamsSize,
		Usage:     core.BufferUsageConstant,
	})
	if err != nil {
		return nil, err
	}
	v.ParamsBuffer = params

	return v, nil
}

// fluidVolumeParamsSize is the per-volume parameter buffer slot size:
// enough for every FluidVolumeDescriptor field plus padding to a
// constant-buffer-friendly 256-byte alignment.
const fluidVolumeParamsSize = 256
