// Package zonelist holds the ordered, duplicate-free list of timezone
// identifiers. Every operation returns a new List and leaves its input
// untouched, so older versions can be kept as history snapshots.
package zonelist

// NoDestination marks a reorder whose drag was cancelled
const NoDestination = -1

// List is an ordered sequence of IANA zone identifiers without duplicates
type List []string

// Clone returns an independent copy of the list
func (l List) Clone() List {
	if l == nil {
		return List{}
	}
	out := make(List, len(l))
	copy(out, l)
	return out
}

// Contains reports whether id is in the list
func (l List) Contains(id string) bool {
	return l.IndexOf(id) >= 0
}

// IndexOf returns the position of id, or -1
func (l List) IndexOf(id string) int {
	for i, z := range l {
		if z == id {
			return i
		}
	}
	return -1
}

// Equal reports whether both lists hold the same ids in the same order
func (l List) Equal(other List) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i] != other[i] {
			return false
		}
	}
	return true
}

// Add appends id iff it is not already present
func Add(l List, id string) List {
	out := l.Clone()
	if id == "" || l.Contains(id) {
		return out
	}
	return append(out, id)
}

// Remove drops the element at index. Out of range indices are ignored.
func Remove(l List, index int) List {
	if index < 0 || index >= len(l) {
		return l.Clone()
	}
	out := make(List, 0, len(l)-1)
	out = append(out, l[:index]...)
	return append(out, l[index+1:]...)
}

// Reorder moves the element at from to position to, keeping every other
// element in its relative order. A negative destination means the drag was
// cancelled and the list is returned unchanged; a destination past the end
// lands on the last position.
func Reorder(l List, from, to int) List {
	if to < 0 || from < 0 || from >= len(l) {
		return l.Clone()
	}
	if to >= len(l) {
		to = len(l) - 1
	}

	moved := l[from]
	rest := Remove(l, from)

	out := make(List, 0, len(l))
	out = append(out, rest[:to]...)
	out = append(out, moved)
	return append(out, rest[to:]...)
}

// Reverse returns the list in reverse order
func Reverse(l List) List {
	out := make(List, len(l))
	for i, z := range l {
		out[len(l)-1-i] = z
	}
	return out
}

// Dedupe drops repeated ids, keeping the first occurrence of each. It is used
// on lists read from storage, which may predate the no-duplicates rule.
func Dedupe(l []string) List {
	out := make(List, 0, len(l))
	seen := make(map[string]bool, len(l))
	for _, z := range l {
		if z == "" || seen[z] {
			continue
		}
		seen[z] = true
		out = append(out, z)
	}
	return out
}
