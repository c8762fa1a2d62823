package mesh

import "github.com/Faultbox/dxs-export/pkg/math"

// FlipV wraps src so its UV layer reports V mirrored (v' = 1 - v).
// Positions, faces and names pass through unchanged.
func FlipV(src Source) Source {
	if src == nil {
		return nil
	}
	return flipped{src}
}

// Unwrap returns the source underneath any FlipV wrappers.
func Unwrap(src Source) Source {
	for {
		f, ok := src.(flipped)
		if !ok {
			return src
		}
		src = f.Source
	}
}

type flipped struct {
	Source
}

func (f flipped) Name() string {
	return NameOf(f.Source, "")
}

func (f flipped) ActiveUVLayer() (UVLayer, bool) {
	uvs, ok := f.Source.ActiveUVLayer()
	if !ok {
		return nil, false
	}
	return flippedUVs{uvs}, true
}

type flippedUVs struct {
	UVLayer
}

func (f flippedUVs) CornerUV(face, corner int) math.Vec2 {
	return f.UVLayer.CornerUV(face, corner).FlipV()
}
