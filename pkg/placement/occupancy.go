package placement

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// Occupant is an accepted position tracked for spacing queries.
type Occupant struct {
	Position mgl32.Vec3
	Category string
	Tags     []string
}

type bucketKey struct{ x, z int }

const maxBucketReach = 64

// Occupancy tracks accepted positions across every category for one
// placement pass. Positions are bucketed on the XZ plane so radius queries
// only visit nearby buckets; distances themselves are measured in 3D.
type Occupancy struct {
	bucket   float32
	buckets  map[bucketKey][]int
	occupied []Occupant
}

// NewOccupancy creates an empty set. bucketSize should be close to the
// typical query radius; non-positive values fall back to 1.
func NewOccupancy(bucketSize float32) *Occupancy {
	if bucketSize <= 0 {
		bucketSize = 1
	}
	return &Occupancy{
		bucket:  bucketSize,
		buckets: make(map[bucketKey][]int),
	}
}

// Len returns the number of occupants.
func (o *Occupancy) Len() int {
	return len(o.occupied)
}

// All returns the occupants in insertion order.
func (o *Occupancy) All() []Occupant {
	return o.occupied
}

// Add records an accepted position.
func (o *Occupancy) Add(occ Occupant) {
	key := o.keyFor(occ.Position)
	o.buckets[key] = append(o.buckets[key], len(o.occupied))
	o.occupied = append(o.occupied, occ)
}

// Clear reports whether no occupant lies strictly closer than radius to pos.
func (o *Occupancy) Clear(pos mgl32.Vec3, radius float32) bool {
	if radius <= 0 {
		return true
	}
	free := true
	o.visit(pos, radius, func(occ *Occupant, dist float32) bool {
		if dist < radius {
			free = false
			return false
		}
		return true
	})
	return free
}

// NearTagged reports whether an occupant carrying any of tags lies within
// radius of pos.
func (o *Occupancy) NearTagged(pos mgl32.Vec3, radius float32, tags []string) bool {
	found := false
	o.visit(pos, radius, func(occ *Occupant, dist float32) bool {
		if dist > radius {
			return true
		}
		for _, tag := range occ.Tags {
			if slices.Contains(tags, tag) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// visit calls fn for every occupant in the buckets overlapping the query
// disc until fn returns false. Radii spanning more buckets than exist fall
// back to a linear scan.
func (o *Occupancy) visit(pos mgl32.Vec3, radius float32, fn func(*Occupant, float32) bool) {
	if len(o.occupied) == 0 {
		return
	}
	center := o.keyFor(pos)
	reach := int(math.Ceil(float64(radius / o.bucket)))
	if span := 2*reach + 1; reach > maxBucketReach || span*span > len(o.buckets) {
		for i := range o.occupied {
			occ := &o.occupied[i]
			if !fn(occ, occ.Position.Sub(pos).Len()) {
				return
			}
		}
		return
	}
	for dz := -reach; dz <= reach; dz++ {
		for dx := -reach; dx <= reach; dx++ {
			for _, idx := range o.buckets[bucketKey{center.x + dx, center.z + dz}] {
				occ := &o.occupied[idx]
				if !fn(occ, occ.Position.Sub(pos).Len()) {
					return
				}
			}
		}
	}
}

func (o *Occupancy) keyFor(p mgl32.Vec3) bucketKey {
	return bucketKey{
		x: int(math.Floor(float64(p.X() / o.bucket))),
		z: int(math.Floor(float64(p.Z() / o.bucket))),
	}
}
