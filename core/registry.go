package core

import "sync"

// slot holds one stored item, the epoch it was inserted under, and
// whether the slot currently holds a live item.
type slot[T any] struct {
	item  T
	epoch Epoch
	valid bool
}

// freeSlot is a released (index, epoch) pair available for reuse. The
// epoch recorded here is the one the slot was released at; the next
// allocation out of this slot bumps it by one so any ID still held by a
// caller against the old occupant fails its epoch check instead of
// silently resolving to whatever now lives there.
type freeSlot struct {
	index Index
	epoch Epoch
}

// Registry is the resource table backing one handle kind - buffers,
// textures, bind-group layouts, bind groups, pipelines, command lists.
// It owns index+epoch allocation, slot storage, and, for the resource
// kinds that need it, the per-in-flight-frame deferred-destruction
// queues the spec's frame scheduler relies on: Tables schedules a
// buffer or texture's destruction against a frame slot, and the
// resource stays resolvable (and therefore safely usable by any
// command list still in flight against an earlier frame) until
// RetireFrame for that slot actually unregisters it.
//
// A Registry with zero frame slots (bind-group layouts, bind groups,
// pipelines, command lists - resources with no native teardown tied to
// frame lifetime) simply never has anything queued against it; Schedule
// and RetireFrame are unused for those instantiations.
//
// Thread-safe for concurrent use.
type Registry[T any, M Marker] struct {
	mu sync.Mutex

	slots []slot[T]
	free  []freeSlot
	next  Index
	count uint64

	destroyQueues [][]ID[M]
}

// NewRegistry creates an empty registry. framesInFlight is the number
// of deferred-destruction queues to keep - pass 0 for resource kinds
// that are destroyed immediately rather than deferred to a frame slot.
func NewRegistry[T any, M Marker](framesInFlight int) *Registry[T, M] {
	r := &Registry[T, M]{slots: make([]slot[T], 0, 64)}
	if framesInFlight > 0 {
		r.destroyQueues = make([][]ID[M], framesInFlight)
	}
	return r
}

// Register allocates a fresh ID and stores item under it.
func (r *Registry[T, M]) Register(item T) ID[M] {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.count++

	var id ID[M]
	if n := len(r.free); n > 0 {
		fs := r.free[n-1]
		r.free = r.free[:n-1]
		id = NewID[M](fs.index, fs.epoch+1)
	} else {
		index := r.next
		r.next++
		id = NewID[M](index, 1)
	}

	index, epoch := id.Unzip()
	r.ensureCapacity(index + 1)
	r.slots[index] = slot[T]{item: item, epoch: epoch, valid: true}
	return id
}

// Get resolves id to its stored item.
func (r *Registry[T, M]) Get(id ID[M]) (T, error) {
	var zero T
	if id.IsZero() {
		return zero, ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	index, epoch := id.Unzip()
	if int(index) >= len(r.slots) {
		return zero, ErrResourceNotFound
	}
	s := &r.slots[index]
	if !s.valid || s.epoch != epoch {
		if int(index) < len(r.slots) {
			return zero, ErrEpochMismatch
		}
		return zero, ErrResourceNotFound
	}
	return s.item, nil
}

// GetMut calls fn with a pointer to id's stored item, while holding the
// registry's lock, and reports whether id resolved.
func (r *Registry[T, M]) GetMut(id ID[M], fn func(*T)) error {
	if id.IsZero() {
		return ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	index, epoch := id.Unzip()
	if int(index) >= len(r.slots) {
		return ErrResourceNotFound
	}
	s := &r.slots[index]
	if !s.valid || s.epoch != epoch {
		return ErrEpochMismatch
	}
	fn(&s.item)
	return nil
}

// Unregister immediately removes id's stored item and releases its
// index for reuse. Callers that need frame-deferred destruction should
// use Schedule and RetireFrame instead of calling this directly at
// schedule time.
func (r *Registry[T, M]) Unregister(id ID[M]) (T, error) {
	var zero T
	if id.IsZero() {
		return zero, ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	index, epoch := id.Unzip()
	if int(index) >= len(r.slots) {
		return zero, ErrResourceNotFound
	}
	s := &r.slots[index]
	if !s.valid || s.epoch != epoch {
		return zero, ErrEpochMismatch
	}

	item := s.item
	s.item = zero
	s.valid = false
	r.free = append(r.free, freeSlot{index: index, epoch: epoch})
	r.count--
	return item, nil
}

// Schedule enqueues id for destruction the next time RetireFrame(frameSlot)
// runs. The handle remains fully resolvable via Get until then.
func (r *Registry[T, M]) Schedule(frameSlot int, id ID[M]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyQueues[frameSlot] = append(r.destroyQueues[frameSlot], id)
}

// RetireFrame unregisters every ID scheduled against frameSlot and
// invokes destroy on each one successfully removed, then clears the
// slot so it can accumulate the next frame's deferred destructions.
// destroy is responsible for releasing the item's native resources; it
// receives the freed ID alongside the item so callers can keep their
// own handle-keyed bookkeeping (e.g. debug allocation tracking) in
// sync. RetireFrame itself only owns handle-table bookkeeping.
func (r *Registry[T, M]) RetireFrame(frameSlot int, destroy func(ID[M], T)) {
	r.mu.Lock()
	queued := r.destroyQueues[frameSlot]
	r.destroyQueues[frameSlot] = nil
	r.mu.Unlock()

	for _, id := range queued {
		if item, err := r.Unregister(id); err == nil {
			destroy(id, item)
		}
	}
}

// Count returns the number of currently registered items.
func (r *Registry[T, M]) Count() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// ensureCapacity grows slots to hold at least needed entries. Must be
// called with mu held.
func (r *Registry[T, M]) ensureCapacity(needed Index) {
	current := Index(len(r.slots))
	if needed <= current {
		return
	}
	newCap := current * 2
	if newCap < needed {
		newCap = needed
	}
	if newCap < 64 {
		newCap = 64
	}
	grown := make([]slot[T], needed, newCap)
	copy(grown, r.slots)
	r.slots = grown
}
