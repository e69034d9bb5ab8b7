package explore

// WallFollow is the left-hand wall-following policy. It keeps a wall on the
// robot's left and pivots right in place when blocked ahead.
func WallFollow(f Features, maxSpeed float64) Speeds {
	switch {
	case f.FrontWall:
		return Speeds{Left: maxSpeed, Right: -maxSpeed}
	case f.LeftWall:
		return Speeds{Left: maxSpeed / 2, Right: maxSpeed / 2}
	case f.LeftCorner:
		return Speeds{Left: maxSpeed, Right: maxSpeed / 4}
	default:
		// Lost the wall: arc left to find it again.
		return Speeds{Left: maxSpeed / 4, Right: maxSpeed}
	}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampSpeeds(s Speeds, maxSpeed float64) Speeds {
	return Speeds{
		Left:  Clamp(s.Left, -maxSpeed, maxSpeed),
		Right: Clamp(s.Right, -maxSpeed, maxSpeed),
	}
}
