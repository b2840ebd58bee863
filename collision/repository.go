package collision

import "slices"

// Repository is the transient store of collision records for one tick.
// Writers and readers never overlap in time, so it carries no lock.
type Repository struct {
	records []Record
}

func NewRepository() *Repository {
	return &Repository{}
}

// Clear empties the store. Called once per tick before the narrow phase.
func (r *Repository) Clear() {
	if r == nil {
		return
	}
	r.records = r.records[:0]
}

// Persist appends one directional record without de-duplication.
func (r *Repository) Persist(rec Record) {
	if r == nil {
		return
	}
	r.records = append(r.records, rec)
}

// All returns a copy of every record in persistence order.
func (r *Repository) All() []Record {
	if r == nil {
		return nil
	}
	return slices.Clone(r.records)
}

// ForLocal returns the records whose local side is entity.
func (r *Repository) ForLocal(entity uint64) []Record {
	if r == nil {
		return nil
	}
	var out []Record
	for _, rec := range r.records {
		if rec.LocalEntity == entity {
			out = append(out, rec)
		}
	}
	return out
}

func (r *Repository) Len() int {
	if r == nil {
		return 0
	}
	return len(r.records)
}
