// Package hal provides the native-driver abstraction the rest of the
// module is built against.
//
// A render-graph executor needs a real GPU to submit to, but it does not
// need to know which one. This package defines the minimal surface a
// native driver must expose: buffer/texture/descriptor-heap allocation,
// opaque transition barriers, command-list submission, and fences.
// Everything above this layer (resource tables, descriptor allocation,
// state tracking, bind groups, the frame scheduler, the fluid-sim pass)
// is written entirely against the hal.Device interface and works
// unmodified against any backend that implements it, including the
// hal/noop backend used by tests.
//
// # Design principles
//
// The HAL prioritizes portability over safety: validation of resource
// state and usage belongs to the layers above it. Its only errors are
// the unrecoverable ones - out of memory, device lost, driver bug.
//
// # Barriers are opaque
//
// Device.MakeBufferBarrier and Device.MakeTextureBarrier return a
// Barrier whose Backend field is backend-specific. The state tracker
// batches these without ever inspecting their contents, so adding a new
// backend never requires touching the tracker.
package hal
