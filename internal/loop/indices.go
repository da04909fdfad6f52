package loop

// Indices tracks which display surface is presented and which one is
// being written. Working is always one surface ahead of Displayed.
type Indices struct {
	Displayed int
	Working   int
	surfaces  int
}

// NewIndices starts a rotation over surfaces at {Displayed: 0, Working: 1}.
// surfaces must be at least 2.
func NewIndices(surfaces int) Indices {
	return Indices{Displayed: 0, Working: 1 % surfaces, surfaces: surfaces}
}

// Advance moves both indices one surface forward.
func (i *Indices) Advance() {
	i.Displayed = (i.Displayed + 1) % i.surfaces
	i.Working = (i.Working + 1) % i.surfaces
}

// Surfaces returns the size of the rotation.
func (i Indices) Surfaces() int { return i.surfaces }
