package collision

import "fmt"

// Record is one directional collision between two colliders for the current
// tick. Every overlapping pair produces two mirrored records.
type Record struct {
	LocalCollider  int
	LocalEntity    uint64
	RemoteCollider int
	RemoteEntity   uint64
	Resolution     Resolution
}

// Mirror returns the record seen from the remote side.
func (r Record) Mirror() Record {
	return Record{
		LocalCollider:  r.RemoteCollider,
		LocalEntity:    r.RemoteEntity,
		RemoteCollider: r.LocalCollider,
		RemoteEntity:   r.LocalEntity,
		Resolution:     r.Resolution.Reversed(),
	}
}

func (r Record) String() string {
	return fmt.Sprintf("%d/%d -> %d/%d dir=(%.3f,%.3f) pen=%.3f",
		r.LocalEntity, r.LocalCollider, r.RemoteEntity, r.RemoteCollider,
		r.Resolution.Direction.X, r.Resolution.Direction.Y, r.Resolution.Penetration)
}
