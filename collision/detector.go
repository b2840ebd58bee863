package collision

import (
	"context"
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide2d/geom"
)

// Stats summarises one Detect call.
type Stats struct {
	Shapes     int
	Candidates int
	Tests      int
	Collisions int
}

// Contact is an unpersisted collision found by Probe.
type Contact struct {
	Local      *geom.Shape
	Remote     *geom.Shape
	Resolution Resolution
}

type pairKey struct {
	lo, hi int
}

func makePairKey(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// Detector runs the broad and narrow phases and writes the results to its
// repository.
type Detector struct {
	BroadPhase BroadPhase
	Matrix     Matrix
	Repository *Repository

	// unavailable is set when the broad phase fails and stays set until the
	// next Detect, so probes for the rest of the tick scan instead of
	// waiting on it again.
	unavailable bool
}

func NewDetector(bp BroadPhase, m Matrix, repo *Repository) *Detector {
	if bp == nil {
		bp = NewGrid(0)
	}
	if repo == nil {
		repo = NewRepository()
	}
	return &Detector{BroadPhase: bp, Matrix: m, Repository: repo}
}

// Detect clears the repository, rebuilds the index from shapes and resolves
// every candidate pair once. shapes[i].ID must equal i. Resolver failures on
// individual pairs are joined into the returned error; the remaining pairs are
// still resolved. A broad phase failure leaves the repository empty.
func (d *Detector) Detect(ctx context.Context, shapes []*geom.Shape) (Stats, error) {
	stats := Stats{Shapes: len(shapes)}
	if d == nil {
		return stats, ErrBroadPhaseUnavailable
	}
	d.Repository.Clear()
	d.unavailable = false

	if err := d.BroadPhase.RebuildIndex(ctx, shapes); err != nil {
		d.unavailable = true
		return stats, fmt.Errorf("collision: rebuild index: %w", err)
	}

	var errs []error
	visited := make(map[pairKey]struct{})
	for _, local := range shapes {
		if local == nil || !local.UpdateCollisions {
			continue
		}
		ids, err := d.BroadPhase.Candidates(ctx, local.BB)
		if err != nil {
			d.Repository.Clear()
			d.unavailable = true
			return stats, fmt.Errorf("collision: query shape %d: %w", local.ID, err)
		}
		stats.Candidates += len(ids)

		for _, id := range ids {
			if id < 0 || id >= len(shapes) {
				continue
			}
			remote := shapes[id]
			if !d.compatible(local, remote) {
				continue
			}
			key := makePairKey(local.ID, remote.ID)
			if _, done := visited[key]; done {
				continue
			}
			visited[key] = struct{}{}

			if !geom.Overlaps(local.BB, remote.BB) {
				continue
			}
			stats.Tests++
			res, ok, err := Resolve(local, remote)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if !ok {
				continue
			}
			rec := Record{
				LocalCollider:  local.Collider,
				LocalEntity:    local.Entity,
				RemoteCollider: remote.Collider,
				RemoteEntity:   remote.Entity,
				Resolution:     res,
			}
			d.Repository.Persist(rec)
			d.Repository.Persist(rec.Mirror())
			stats.Collisions++
		}
	}
	return stats, errors.Join(errs...)
}

// Probe resolves probe shapes against the tick's shapes without touching the
// repository. Candidate boxes are grown by margin to cover shapes that moved
// since the last rebuild. Once the broad phase has failed, every shape is
// scanned instead until the next Detect. accept may further restrict the
// remote side.
func (d *Detector) Probe(ctx context.Context, probe, all []*geom.Shape, margin float64, accept func(remote *geom.Shape) bool) ([]Contact, error) {
	if d == nil {
		return nil, ErrBroadPhaseUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		out  []Contact
		errs []error
	)
	for _, local := range probe {
		if local == nil {
			continue
		}
		ids, err := d.candidates(ctx, geom.Grow(local.BB, margin), len(all))
		if err != nil {
			return out, err
		}
		for _, id := range ids {
			if id < 0 || id >= len(all) {
				continue
			}
			remote := all[id]
			if !d.compatible(local, remote) {
				continue
			}
			if accept != nil && !accept(remote) {
				continue
			}
			if !geom.Overlaps(local.BB, remote.BB) {
				continue
			}
			res, ok, err := Resolve(local, remote)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if ok {
				out = append(out, Contact{Local: local, Remote: remote, Resolution: res})
			}
		}
	}
	return out, errors.Join(errs...)
}

// Unavailable reports whether the broad phase failed since the last Detect.
func (d *Detector) Unavailable() bool {
	return d != nil && d.unavailable
}

// candidates asks the broad phase for ids near bb, or lists all n ids when it
// is unavailable. Only a done ctx is returned as an error.
func (d *Detector) candidates(ctx context.Context, bb cp.BB, n int) ([]int, error) {
	if !d.unavailable {
		ids, err := d.BroadPhase.Candidates(ctx, bb)
		if err == nil {
			return ids, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		d.unavailable = true
	}
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	return ids, nil
}

func (d *Detector) compatible(local, remote *geom.Shape) bool {
	if remote == nil || local.ID == remote.ID || local.Entity == remote.Entity {
		return false
	}
	if local.Ignores(remote.Layer) || remote.Ignores(local.Layer) {
		return false
	}
	return d.Matrix.Allows(local.Layer, remote.Layer)
}
