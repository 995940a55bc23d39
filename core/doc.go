// Package core provides the resource tables, command-list recording and
// bind-group building the rest of the module runs against.
//
//   - ID: a type-safe, generation-checked handle (index + epoch)
//   - Registry: the generic resource table ID resolves against - index
//     allocation, epoch bumping on reuse, and (for buffers and textures)
//     the per-frame-slot deferred-destruction queues Tables schedules
//     against
//   - Tables: one Registry per resource kind (buffers, textures,
//     bind-group layouts, bind groups, pipelines, command lists)
//
// # ID system
//
//	type BufferID = ID[bufferMarker]
//	id := NewID[bufferMarker](index, epoch)
//	index, epoch := id.Unzip()
//
// The epoch invalidates a stale handle the moment its slot is reused,
// turning a use-after-free into a returned error instead of silently
// reading whatever now occupies that slot.
//
// # Frame-deferred destruction
//
// A GPU resource scheduled for destruction cannot be released the
// instant the caller asks: a command list from an earlier, still
// in-flight frame may still reference it. Registry.Schedule enqueues an
// ID against a frame slot rather than unregistering it immediately; the
// handle stays fully resolvable via Get until Tables.RetireFrame is
// called for that slot once its frame's work has actually completed,
// at which point the queued IDs are unregistered and their native
// resources released. Resource kinds with no native teardown tied to
// frame lifetime - bind-group layouts, bind groups, pipelines, command
// lists - are constructed with zero frame slots and never schedule
// anything.
//
// # Thread safety
//
// Registry and Tables are safe for concurrent use. Resources returned
// from Registry.Get are not implicitly protected; callers that mutate a
// resource concurrently with other access must synchronize separately.
package core
