package scripting

// Fallback is the Go rendition of the embedded rules.
type Fallback struct {
	GrowthFactor float64
	LevelEvery   int
}

func (f Fallback) AbsorbGrowth(_, smallerRadius float64, _ bool) float64 {
	return smallerRadius * f.GrowthFactor
}

func (f Fallback) NextLevel(score, level int) int {
	if f.LevelEvery > 0 && score > 0 && score%f.LevelEvery == 0 {
		return level + 1
	}
	return level
}
