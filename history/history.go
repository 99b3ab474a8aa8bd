// Package history tracks past and future versions of the zone list for
// linear undo/redo.
package history

import "github.com/philtim/timeplanner/zonelist"

// Tracker holds the undo stack (History, most recent last) and the redo
// stack (Future, next redo first). The current list lives with the caller.
//
// Tracker is a value type: every method returns a new Tracker and never
// shares slices with its receiver or arguments.
type Tracker struct {
	History []zonelist.List
	Future  []zonelist.List
}

// New builds a tracker from stored stacks, copying every snapshot
func New(history, future []zonelist.List) Tracker {
	return Tracker{
		History: cloneAll(history),
		Future:  cloneAll(future),
	}
}

// Commit records old as the state preceding a direct mutation and discards
// any redo states.
func (t Tracker) Commit(old zonelist.List) Tracker {
	h := cloneAll(t.History)
	h = append(h, old.Clone())
	return Tracker{History: h, Future: []zonelist.List{}}
}

// Undo moves current onto the front of Future and returns the most recent
// History snapshot as the new current list. ok is false when there is
// nothing to undo.
func (t Tracker) Undo(current zonelist.List) (next Tracker, restored zonelist.List, ok bool) {
	if len(t.History) == 0 {
		return t.clone(), current.Clone(), false
	}

	last := len(t.History) - 1
	restored = t.History[last].Clone()

	future := make([]zonelist.List, 0, len(t.Future)+1)
	future = append(future, current.Clone())
	future = append(future, cloneAll(t.Future)...)

	return Tracker{History: cloneAll(t.History[:last]), Future: future}, restored, true
}

// Redo pushes current onto History and returns the front Future snapshot as
// the new current list. ok is false when there is nothing to redo.
func (t Tracker) Redo(current zonelist.List) (next Tracker, restored zonelist.List, ok bool) {
	if len(t.Future) == 0 {
		return t.clone(), current.Clone(), false
	}

	restored = t.Future[0].Clone()

	h := cloneAll(t.History)
	h = append(h, current.Clone())

	return Tracker{History: h, Future: cloneAll(t.Future[1:])}, restored, true
}

// CanUndo reports whether Undo would change anything
func (t Tracker) CanUndo() bool { return len(t.History) > 0 }

// CanRedo reports whether Redo would change anything
func (t Tracker) CanRedo() bool { return len(t.Future) > 0 }

// Timeline returns the full linear edit sequence: History, then current,
// then Future in redo order.
func (t Tracker) Timeline(current zonelist.List) []zonelist.List {
	out := make([]zonelist.List, 0, len(t.History)+1+len(t.Future))
	out = append(out, cloneAll(t.History)...)
	out = append(out, current.Clone())
	return append(out, cloneAll(t.Future)...)
}

func (t Tracker) clone() Tracker {
	return Tracker{History: cloneAll(t.History), Future: cloneAll(t.Future)}
}

func cloneAll(in []zonelist.List) []zonelist.List {
	out := make([]zonelist.List, len(in))
	for i, l := range in {
		out[i] = l.Clone()
	}
	return out
}
