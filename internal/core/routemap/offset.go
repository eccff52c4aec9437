package routemap

import (
	"math"

	"github.com/samirrijal/tripmap/internal/core/domain"
	"github.com/samirrijal/tripmap/internal/pkg/geospatial"
)

const (
	// offsetPerKm converts chord length to the base lateral offset in degrees.
	offsetPerKm = 0.001
	// maxBaseOffset caps the base offset for long routes.
	maxBaseOffset = 0.5
	// fanOutStep widens each repeated arc on the same directed pair.
	fanOutStep = 0.3
)

type pair struct {
	origin      string
	destination string
}

// Placement is the lateral offset chosen for one trip.
type Placement struct {
	Offset float64
	// Occurrence is the 1-based count of this directed pair so far in the pass.
	Occurrence int
}

// OffsetPlanner spreads repeated and reciprocal trips between two cities onto
// separate arcs. It is not safe for concurrent use.
type OffsetPlanner struct {
	counts map[pair]int
	// side is +1 for the first direction seen on a city pair and -1 for its reverse.
	side map[pair]float64
}

func NewOffsetPlanner() *OffsetPlanner {
	return &OffsetPlanner{
		counts: make(map[pair]int),
		side:   make(map[pair]float64),
	}
}

// Reset forgets every pair seen so far.
func (p *OffsetPlanner) Reset() {
	clear(p.counts)
	clear(p.side)
}

// Plan returns the offset for the next trip from origin to destination and
// records it. The magnitude grows with every earlier trip between the two
// cities in either direction, so no two arcs on a pair coincide. The sign is
// fixed per direction: positive for the direction seen first, negative for
// its reverse.
func (p *OffsetPlanner) Plan(origin, destination string, from, to domain.GeoPoint) Placement {
	fwdKey := pair{origin: origin, destination: destination}
	backKey := pair{origin: destination, destination: origin}

	fwd := p.counts[fwdKey]
	back := p.counts[backKey]
	p.counts[fwdKey] = fwd + 1

	direction, ok := p.side[fwdKey]
	if !ok {
		direction = 1
		if back > 0 {
			direction = -1
		}
		p.side[fwdKey] = direction
	}

	base := math.Min(geospatial.DistanceKm(from.Lat, from.Lon, to.Lat, to.Lon)*offsetPerKm, maxBaseOffset)
	multiplier := 1 + float64(fwd+back)*fanOutStep

	return Placement{Offset: base * multiplier * direction, Occurrence: fwd + 1}
}
