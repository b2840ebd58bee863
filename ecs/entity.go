package ecs

import "strconv"

// Entity is a slot id in the low 32 bits and the slot's generation in the
// high 32. Slot 0 is never handed out, so the zero Entity means "none".
type Entity uint64

type entityID uint32
type generation uint32

const entityIDBits = 32

func makeEntity(id entityID, gen generation) Entity {
	return Entity(uint64(gen)<<entityIDBits | uint64(id))
}

func (e Entity) id() entityID {
	return entityID(uint32(e))
}

func (e Entity) generation() generation {
	return generation(uint32(uint64(e) >> entityIDBits))
}

// Index returns the slot id. Queries visit entities in ascending index
// order, which keeps ticks reproducible.
func (e Entity) Index() uint32 {
	return uint32(e.id())
}

// Owner is the plain form kept by packages below ecs: shape and record
// owners and Parent.Entity.
func (e Entity) Owner() uint64 {
	return uint64(e)
}

// OwnerEntity turns an Owner value back into an Entity.
func OwnerEntity(owner uint64) Entity {
	return Entity(owner)
}

// String prints "id" for a first-generation slot and "idvN" once the slot
// has been reused.
func (e Entity) String() string {
	id := strconv.FormatUint(uint64(e.id()), 10)
	if e.generation() == 0 {
		return id
	}
	return id + "v" + strconv.FormatUint(uint64(e.generation()), 10)
}

func (e Entity) Valid() bool {
	return e.id() > 0
}
