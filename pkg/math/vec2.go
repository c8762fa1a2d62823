package math

// Vec2 is a 2D vector. Texture coordinates use X as U and Y as V.
type Vec2 struct {
	X, Y float32
}

// FlipV mirrors the V axis, converting between top-left and bottom-left
// texture origins.
func (v Vec2) FlipV() Vec2 {
	return Vec2{v.X, 1 - v.Y}
}
