package engine

// EntityList is a dense array of entities. Each entity remembers its slot,
// so Remove is a constant-time swap with the last element.
//
// Removing during iteration is safe when walking from the end.
type EntityList struct {
	items []*Entity
	which int
}

// NewFactionList returns a list using the entity's faction slot. An entity
// can be in at most one faction list.
func NewFactionList() *EntityList {
	return &EntityList{which: listFaction}
}

// NewUpdatableList returns a list using the entity's updatable slot.
func NewUpdatableList() *EntityList {
	return &EntityList{which: listUpdatable}
}

// Add appends e. It returns false if e already holds a slot in this kind of list.
func (l *EntityList) Add(e *Entity) bool {
	if e.slots[l.which] >= 0 {
		return false
	}
	e.slots[l.which] = len(l.items)
	l.items = append(l.items, e)
	return true
}

// Remove swaps e out of the list. It returns false if e was not present.
func (l *EntityList) Remove(e *Entity) bool {
	i := e.slots[l.which]
	if i < 0 || i >= len(l.items) || l.items[i] != e {
		return false
	}
	last := len(l.items) - 1
	if i != last {
		moved := l.items[last]
		l.items[i] = moved
		moved.slots[l.which] = i
	}
	l.items[last] = nil
	l.items = l.items[:last]
	e.slots[l.which] = -1
	return true
}

// Contains reports whether e is in the list.
func (l *EntityList) Contains(e *Entity) bool {
	i := e.slots[l.which]
	return i >= 0 && i < len(l.items) && l.items[i] == e
}

func (l *EntityList) Len() int {
	return len(l.items)
}

func (l *EntityList) At(i int) *Entity {
	return l.items[i]
}

// Items returns the backing slice. Callers must not modify it.
func (l *EntityList) Items() []*Entity {
	return l.items
}
