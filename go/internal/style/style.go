// Package style generates the decorative torn-paper card styling. Styles are
// deterministic per key and memoized for the lifetime of the room, so a card
// never changes its look across re-renders. The cache is unbounded but small:
// the key space is bounded by the round count.
package style

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"sync"
)

const (
	// avgSpikes is the mean zigzag count per card edge.
	avgSpikes = 20
	// maxDent is the deepest zigzag indentation, as a fraction of the card.
	maxDent = 0.03
	// maxRotateDeg bounds the whole-card tilt.
	maxRotateDeg = 3.0
)

// Descriptor is the computed look of one card.
type Descriptor struct {
	// ClipPath is a CSS polygon() tracing the torn edge.
	ClipPath string
	// RotateDeg tilts the card, in [-3, 3] degrees.
	RotateDeg float64
	// BackgroundX and BackgroundY shift the paper texture, in [-100, 100]
	// percent.
	BackgroundX float64
	BackgroundY float64
}

// LogoDescriptor is the computed look of the card's logo stamp.
type LogoDescriptor struct {
	// RotateDeg is in [-32, 18] degrees: a random tilt around a -7 degree
	// resting angle.
	RotateDeg float64
}

// Key builds the cache key for one card.
func Key(rounds, index int) string {
	return fmt.Sprintf("%d_%d", rounds, index)
}

// Cache memoizes card styles by key.
type Cache struct {
	mu     sync.Mutex
	styles map[string]Descriptor
	logos  map[string]LogoDescriptor
}

// NewCache creates an empty style cache.
func NewCache() *Cache {
	return &Cache{
		styles: make(map[string]Descriptor),
		logos:  make(map[string]LogoDescriptor),
	}
}

// StyleFor returns the card style for the key, computing it on first use.
func (c *Cache) StyleFor(key string) Descriptor {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d, ok := c.styles[key]; ok {
		return d
	}
	d := computeStyle(rngFor(key))
	c.styles[key] = d
	return d
}

// LogoStyleFor returns the logo style for the key, computing it on first use.
func (c *Cache) LogoStyleFor(key string) LogoDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d, ok := c.logos[key]; ok {
		return d
	}
	d := LogoDescriptor{RotateDeg: rngFor("logo:"+key).Float64()*50 - 25 - 7}
	c.logos[key] = d
	return d
}

// rngFor seeds a generator from the key so the style is a pure function of
// the key.
func rngFor(key string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(key))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

func computeStyle(rng *rand.Rand) Descriptor {
	return Descriptor{
		ClipPath:    zigzagPolygon(rng),
		RotateDeg:   rng.Float64()*2*maxRotateDeg - maxRotateDeg,
		BackgroundX: rng.Float64()*200 - 100,
		BackgroundY: rng.Float64()*200 - 100,
	}
}

// zigzagPolygon traces the card perimeter clockwise, alternating between the
// true edge and a shallow random dent, to fake a torn paper outline.
func zigzagPolygon(rng *rand.Rand) string {
	spikes := avgSpikes/2 + rng.Intn(avgSpikes)

	dent := func() float64 { return rng.Float64() * maxDent * 100 }

	var pts []string
	point := func(x, y float64) {
		pts = append(pts, fmt.Sprintf("%.2f%% %.2f%%", x, y))
	}

	for i := 0; i <= spikes; i++ {
		x := float64(i) / float64(spikes) * 100
		point(x, dent())
	}
	for i := 1; i <= spikes; i++ {
		y := float64(i) / float64(spikes) * 100
		point(100-dent(), y)
	}
	for i := 1; i <= spikes; i++ {
		x := 100 - float64(i)/float64(spikes)*100
		point(x, 100-dent())
	}
	for i := 1; i < spikes; i++ {
		y := 100 - float64(i)/float64(spikes)*100
		point(dent(), y)
	}

	return "polygon(" + strings.Join(pts, ", ") + ")"
}
