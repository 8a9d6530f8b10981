package ir

// Link flattens f's build-time linked list of Units into f.Instructions,
// dropping every UEmpty anchor and rewriting each Jump's symbolic Target
// into a signed Offset relative to the instruction following the jump
// (spec.md §4.6: "dropping Empty anchor units and rewriting each jump's
// target into a signed offset relative to the next instruction").
//
// Link is idempotent: calling it twice re-derives the same array.
func Link(f *Function) {
	var units []*Unit
	positionOf := map[*Unit]int{}
	for u := f.head; u != nil; u = u.next {
		if u.Kind == UEmpty {
			continue
		}
		positionOf[u] = len(units)
		units = append(units, u)
	}

	f.Instructions = make([]Unit, len(units))
	for i, u := range units {
		inst := *u
		if inst.Kind == UJump && inst.Target != nil {
			targetPos, ok := positionOf[inst.Target]
			if !ok {
				// Target is an anchor, which never gets a position of its
				// own; walk forward past it (and any anchors chained after
				// it) to the first real unit.
				t := inst.Target
				for t != nil && t.Kind == UEmpty {
					t = t.next
				}
				if t != nil {
					targetPos = positionOf[t]
					ok = true
				}
			}
			if ok {
				inst.Offset = targetPos - (i + 1)
			}
		}
		inst.next = nil
		f.Instructions[i] = inst
	}
}

// JumpOffsetsInBounds checks spec.md §8's "Jump offsets stay in-bounds"
// testable property for a linked Function.
func JumpOffsetsInBounds(f *Function) bool {
	for i, inst := range f.Instructions {
		if inst.Kind != UJump {
			continue
		}
		target := i + 1 + inst.Offset
		if target < 0 || target > len(f.Instructions) {
			return false
		}
	}
	return true
}
