package statetrack

// ResourceKey identifies a tracked resource within a command list. It is
// derived from the raw form of a core.ID (a texture's raw ID; a buffer's
// raw ID with the top bit set), so trackers never need to import the
// core package's generic marker types.
type ResourceKey uint64

// Barrier is a single required transition for one resource.
type Barrier struct {
	Key  ResourceKey
	Kind Kind
	From ResourceState
	To   ResourceState
}

type tracked struct {
	kind    Kind
	initial ResourceState
	current ResourceState
}

// Tracker records the state of every resource touched by one command
// list and emits the minimal set of barriers needed to keep each
// resource's declared state consistent with how it is about to be used.
//
// Tracker records two maps per resource: the state it was first seen in
// (initial) and its state as of the last recorded transition (current).
// The initial map lets a command-list recorder reconcile this list's
// assumptions against the resource's state as of the previous list that
// touched it, without the tracker itself needing to know about any
// other command list.
type Tracker struct {
	resources map[ResourceKey]*tracked
}

// New creates an empty tracker, ready to record a single command list's
// worth of resource transitions.
func New() *Tracker {
	return &Tracker{resources: make(map[ResourceKey]*tracked)}
}

// SetState declares that key is about to be used in the given state.
// It returns a barrier if the resource's current state differs from
// required, or nil if no transition is necessary.
//
// The first time a resource is seen, its current state is assumed to be
// StateCommon. Buffers and simultaneous-access textures are promoted
// out of Common into any read state with no barrier at all, mirroring
// the D3D12 implicit state promotion rule; every other kind, and every
// write state, requires an explicit barrier even on first use.
func (t *Tracker) SetState(key ResourceKey, kind Kind, required ResourceState) *Barrier {
	r, ok := t.resources[key]
	if !ok {
		r = &tracked{kind: kind, initial: required, current: StateCommon}
		t.resources[key] = r
	}

	if r.current == required || r.current.Contains(required) && required.IsReadOnly() && r.current.IsReadOnly() {
		return nil
	}

	if !ok && kind.promotable() && required.IsReadOnly() {
		r.initial = required
		r.current = required
		return nil
	}

	from := r.current
	r.current = required
	if from == required {
		return nil
	}
	return &Barrier{Key: key, Kind: kind, From: from, To: required}
}

// InitialState returns the state a resource was first required to be in
// during this command list, and whether it was touched at all.
func (t *Tracker) InitialState(key ResourceKey) (ResourceState, bool) {
	r, ok := t.resources[key]
	if !ok {
		return StateCommon, false
	}
	return r.initial, true
}

// CurrentState returns a resource's state as of the last transition
// recorded in this command list.
func (t *Tracker) CurrentState(key ResourceKey) (ResourceState, bool) {
	r, ok := t.resources[key]
	if !ok {
		return StateCommon, false
	}
	return r.current, true
}

// Touched returns every resource key this tracker has recorded a state
// for, in no particular order.
func (t *Tracker) Touched() []ResourceKey {
	keys := make([]ResourceKey, 0, len(t.resources))
	for k := range t.resources {
		keys = append(keys, k)
	}
	return keys
}

// Reconcile computes the barrier needed, if any, to move a resource from
// its last globally-known state (as tracked by the resource table
// across command lists) into this tracker's recorded initial state for
// that resource. It does not mutate the tracker.
func (t *Tracker) Reconcile(key ResourceKey, lastGlobalState ResourceState) *Barrier {
	r, ok := t.resources[key]
	if !ok {
		return nil
	}
	if lastGlobalState == r.initial {
		return nil
	}
	if r.initial.IsReadOnly() && lastGlobalState.IsReadOnly() {
		return nil
	}
	return &Barrier{Key: key, Kind: r.kind, From: lastGlobalState, To: r.initial}
}
