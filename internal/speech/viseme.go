package speech

import "math/rand"

// Shape is the coarse mouth-shape signal driving the avatar. It is a cosmetic
// approximation sampled at word boundaries, not lip-sync.
type Shape string

const (
	ShapeNeutral Shape = "neutral"
	ShapeOpen    Shape = "open"
	ShapeWide    Shape = "wide"
	ShapeRound   Shape = "round"
	ShapeSmall   Shape = "small"
)

// shapePalette is sampled on each word boundary while a unit plays.
var shapePalette = [...]Shape{ShapeOpen, ShapeWide, ShapeRound, ShapeSmall}

// defaultShapeSampler picks a palette index at random. Tests substitute a
// deterministic sampler.
func defaultShapeSampler(n int) int {
	return rand.Intn(n)
}
