package runtime

import "github.com/yov-lang/yov/internal/types"

// Object is a heap-resident value (spec.md §3.5): a typed, ref-counted
// payload linked into the process-wide intrusive list. The payload is
// represented as a tagged Go value rather than a raw byte buffer — the
// idiomatic Go rendition of the original's explicit {buffer, capacity,
// size} struct, since Go's own allocator and GC already own the bytes
// behind a string/slice; only the ref-count/intrusive-list bookkeeping
// needs to be hand-rolled to honor spec.md §3.5/§5's object lifecycle.
type Object struct {
	ID       int64
	Type     types.VType
	RefCount int
	Payload  any

	prev, next *Object
}

// ResultPayload is the Go-side read view of a Result object's three fields
// (spec.md §4.7/§7's "Every intrinsic that can fail returns a
// Result{failed, message, code}"). The object itself is represented as an
// ordinary three-element []Reference struct payload, exactly like any
// user-defined struct, so `res.failed` field access lowers to the same
// UChild/readThrough path a script-defined struct would use; ResultPayload
// is only a convenience return type for Machine.AsResult/NewResult.
type ResultPayload struct {
	Failed  bool
	Message string
	Code    int
}

// Heap is the intrusive doubly-linked list of every live Object, plus an
// allocation counter for fresh IDs (spec.md §4.7/§5).
type Heap struct {
	head, tail *Object
	nextID     int64
	count      int
}

// NewHeap creates an empty heap.
func NewHeap() *Heap { return &Heap{} }

// Alloc links a freshly created Object with the given type/payload into
// the heap and returns it, with RefCount zero (the caller is expected to
// immediately bind it to a register or Reference, which increfs it).
func (h *Heap) Alloc(t types.VType, payload any) *Object {
	h.nextID++
	o := &Object{ID: h.nextID, Type: t, Payload: payload}
	if h.tail == nil {
		h.head, h.tail = o, o
	} else {
		o.prev = h.tail
		h.tail.next = o
		h.tail = o
	}
	h.count++
	return o
}

func (h *Heap) incref(o *Object) {
	if o != nil {
		o.RefCount++
	}
}

func (h *Heap) decref(o *Object) {
	if o != nil {
		o.RefCount--
	}
}

func (h *Heap) unlink(o *Object) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		h.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		h.tail = o.prev
	}
	o.prev, o.next = nil, nil
	h.count--
}

// release drops the ref-counts an object's payload holds on other objects
// (array elements, struct members, a reference's target) before it is
// unlinked, so freeing it can cascade.
func (h *Heap) release(o *Object) {
	switch p := o.Payload.(type) {
	case []Reference:
		for _, r := range p {
			h.decref(r.Parent)
		}
	case Reference:
		h.decref(p.Parent)
	}
}

// Sweep walks the intrusive list and frees every object with a zero
// ref-count, iterating to a fixpoint: releasing one object can drop
// another's count to zero in the same pass (spec.md §5: "iterating to a
// fixpoint so that breaking a reference may release its target").
func (h *Heap) Sweep() {
	for {
		freedAny := false
		for o := h.head; o != nil; {
			next := o.next
			if o.RefCount <= 0 {
				h.release(o)
				h.unlink(o)
				freedAny = true
			}
			o = next
		}
		if !freedAny {
			return
		}
	}
}

// ObjectCount reports the number of live objects, the "heap.object_count"
// spec.md §8's ref-count-balance testable property checks against zero at
// exit.
func (h *Heap) ObjectCount() int { return h.count }
