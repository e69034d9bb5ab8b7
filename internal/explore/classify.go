package explore

// Thresholds are the raw-reading cut-offs used by Classify.
type Thresholds struct {
	Wall  float64
	Light float64
}

// Features are the boolean observations derived from one Sample.
type Features struct {
	FrontWall  bool
	LeftWall   bool
	LeftCorner bool
	// Bright is informational; no steering or memory decision reads it.
	Bright bool
}

// Classify thresholds a sample. Proximity sensors read higher the closer
// the wall, so every comparison is a strict greater-than.
func Classify(s Sample, th Thresholds) Features {
	return Features{
		FrontWall:  s.FrontRange > th.Wall,
		LeftWall:   s.LeftRange > th.Wall,
		LeftCorner: s.LeftCornerRange > th.Wall,
		Bright:     s.Light > th.Light,
	}
}
