package pelbuf

// Area is a rectangle in sample units of one plane.
type Area struct {
	X, Y          int
	Width, Height int
}

// NewArea returns the rectangle at (x, y) of size w x h.
func NewArea(x, y, w, h int) Area { return Area{X: x, Y: y, Width: w, Height: h} }

// Size returns the number of samples covered by a.
func (a Area) Size() int { return a.Width * a.Height }

// Empty reports whether a covers no samples.
func (a Area) Empty() bool { return a.Width <= 0 || a.Height <= 0 }

// Overlaps reports whether a and b share at least one sample.
func (a Area) Overlaps(b Area) bool {
	if a.Empty() || b.Empty() {
		return false
	}
	return a.X < b.X+b.Width && b.X < a.X+a.Width &&
		a.Y < b.Y+b.Height && b.Y < a.Y+a.Height
}

// CompArea is an Area tagged with the plane it belongs to.
type CompArea struct {
	Area
	Comp         ComponentID
	ChromaFormat ChromaFormat
}

// UnitArea is the per-component footprint of one coding unit: the luma
// rectangle and the chroma rectangles scaled by the subsampling of the
// chroma format.
type UnitArea struct {
	ChromaFormat ChromaFormat
	Blocks       [MaxNumComponents]CompArea
}

// NewUnitArea derives the component rectangles of a unit whose luma
// footprint is luma.
func NewUnitArea(cf ChromaFormat, luma Area) UnitArea {
	u := UnitArea{ChromaFormat: cf}
	for c := 0; c < cf.NumComponents(); c++ {
		comp := ComponentID(c)
		sx, sy := cf.ScaleX(comp), cf.ScaleY(comp)
		u.Blocks[c] = CompArea{
			Area: Area{
				X:      luma.X >> sx,
				Y:      luma.Y >> sy,
				Width:  luma.Width >> sx,
				Height: luma.Height >> sy,
			},
			Comp:         comp,
			ChromaFormat: cf,
		}
	}
	return u
}

// Block returns the rectangle of comp.
func (u UnitArea) Block(comp ComponentID) CompArea { return u.Blocks[comp] }

// Y returns the luma rectangle.
func (u UnitArea) Y() CompArea { return u.Blocks[CompY] }

// Cb returns the blue-difference chroma rectangle.
func (u UnitArea) Cb() CompArea { return u.Blocks[CompCb] }

// Cr returns the red-difference chroma rectangle.
func (u UnitArea) Cr() CompArea { return u.Blocks[CompCr] }

// Window is a conformance (crop) window in luma sample units.
type Window struct {
	Enabled bool
	Left    int
	Right   int
	Top     int
	Bottom  int
}
