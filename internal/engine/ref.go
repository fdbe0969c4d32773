package engine

// EntityRef is a serializable reference to an entity by ID. Hooks and
// remote intents hold refs instead of pointers so a removed entity is never
// resurrected.
type EntityRef struct {
	ID EntityID // 0 = none
}

// RefTo returns a reference to e, or the empty reference for nil.
func RefTo(e *Entity) EntityRef {
	if e == nil {
		return EntityRef{}
	}
	return EntityRef{ID: e.ID}
}

// Get resolves the reference. It returns nil if the reference is empty or
// the entity is no longer in the world.
func (r EntityRef) Get(w WorldAccess) *Entity {
	if r.ID == 0 || w == nil {
		return nil
	}
	return w.Entity(r.ID)
}

// IsValid returns true if the reference points to something.
// Note: This doesn't check if the entity still exists.
func (r EntityRef) IsValid() bool {
	return r.ID != 0
}

func (r *EntityRef) Set(e *Entity) {
	*r = RefTo(e)
}

func (r *EntityRef) Clear() {
	r.ID = 0
}
