package pelbuf

// ClipRanges holds one clip range per component.
type ClipRanges [MaxNumComponents]ClipRange

// UniformClipRanges returns clip ranges of the same bit depth for every
// component.
func UniformClipRanges(bitDepth int) ClipRanges {
	c := ClipRange{BitDepth: bitDepth}
	return ClipRanges{c, c, c}
}

// UnitBuf is a multi-plane view: one PelBuf per component present in the
// chroma format.
type UnitBuf struct {
	ChromaFormat ChromaFormat
	Bufs         []PelBuf
}

// NewUnitBuf returns a view over the given planes. bufs must hold exactly
// one view per component of cf.
func NewUnitBuf(cf ChromaFormat, bufs ...PelBuf) UnitBuf {
	check(cf.Valid(), "NewUnitBuf", "invalid chroma format %d", int(cf))
	check(len(bufs) == cf.NumComponents(), "NewUnitBuf", "%d planes for %v", len(bufs), cf)
	return UnitBuf{ChromaFormat: cf, Bufs: bufs}
}

// Get returns the view of comp.
func (u UnitBuf) Get(comp ComponentID) PelBuf { return u.Bufs[comp] }

// Y returns the luma view.
func (u UnitBuf) Y() PelBuf { return u.Bufs[CompY] }

// Cb returns the blue-difference chroma view.
func (u UnitBuf) Cb() PelBuf { return u.Bufs[CompCb] }

// Cr returns the red-difference chroma view.
func (u UnitBuf) Cr() PelBuf { return u.Bufs[CompCr] }

// NumComponents returns the number of planes in u.
func (u UnitBuf) NumComponents() int { return len(u.Bufs) }

// Empty reports whether u holds no planes.
func (u UnitBuf) Empty() bool { return len(u.Bufs) == 0 }

func (u UnitBuf) compatible(op string, o UnitBuf) {
	check(u.ChromaFormat == o.ChromaFormat && len(u.Bufs) == len(o.Bufs), op,
		"chroma format mismatch %v vs %v", u.ChromaFormat, o.ChromaFormat)
}

// SubBuf returns the views of the component rectangles of area, whose
// positions are relative to the origin of u.
func (u UnitBuf) SubBuf(area UnitArea) UnitBuf {
	check(area.ChromaFormat == u.ChromaFormat, "SubBuf", "chroma format mismatch %v vs %v", area.ChromaFormat, u.ChromaFormat)
	sub := UnitBuf{ChromaFormat: u.ChromaFormat, Bufs: make([]PelBuf, len(u.Bufs))}
	for i, b := range u.Bufs {
		sub.Bufs[i] = b.SubArea(area.Blocks[i].Area)
	}
	return sub
}

// Fill sets every sample of every plane to v.
func (u UnitBuf) Fill(v Pel) {
	for _, b := range u.Bufs {
		b.Fill(v)
	}
}

// CopyFrom copies every plane of src.
func (u UnitBuf) CopyFrom(src UnitBuf) {
	u.compatible("CopyFrom", src)
	for i, b := range u.Bufs {
		b.CopyFrom(src.Bufs[i])
	}
}

// Reconstruct sets every plane to clip(pred + resi).
func (u UnitBuf) Reconstruct(pred, resi UnitBuf, clp ClipRanges) {
	u.compatible("Reconstruct", pred)
	u.compatible("Reconstruct", resi)
	for i, b := range u.Bufs {
		b.Reconstruct(pred.Bufs[i], resi.Bufs[i], clp[i])
	}
}

// AddAvg averages two intermediate predictions plane by plane.
func (u UnitBuf) AddAvg(src1, src2 UnitBuf, clp ClipRanges) {
	u.compatible("AddAvg", src1)
	u.compatible("AddAvg", src2)
	for i, b := range u.Bufs {
		b.AddAvg(src1.Bufs[i], src2.Bufs[i], clp[i])
	}
}

// AddWeightedAvg is AddAvg with bi-prediction weight index bcwIdx.
func (u UnitBuf) AddWeightedAvg(src1, src2 UnitBuf, clp ClipRanges, bcwIdx int) {
	u.compatible("AddWeightedAvg", src1)
	u.compatible("AddWeightedAvg", src2)
	for i, b := range u.Bufs {
		b.AddWeightedAvg(src1.Bufs[i], src2.Bufs[i], clp[i], bcwIdx)
	}
}

// CopyClip copies src clipping each plane to its own range.
func (u UnitBuf) CopyClip(src UnitBuf, clp ClipRanges) {
	u.compatible("CopyClip", src)
	for i, b := range u.Bufs {
		b.CopyClip(src.Bufs[i], clp[i])
	}
}

// RoundToOutputBitdepth rounds every plane of src to its output bit depth.
func (u UnitBuf) RoundToOutputBitdepth(src UnitBuf, clp ClipRanges) {
	u.compatible("RoundToOutputBitdepth", src)
	for i, b := range u.Bufs {
		b.RoundToOutputBitdepth(src.Bufs[i], clp[i])
	}
}

// Subtract sets every plane to u - other without clipping.
func (u UnitBuf) Subtract(other UnitBuf) {
	u.compatible("Subtract", other)
	for i, b := range u.Bufs {
		b.Subtract(other.Bufs[i])
	}
}

// ExtendBorderPel pads every plane with a border of margin samples. With
// scaleChroma the chroma border is reduced by the subsampling of each axis;
// only square subsampling scales the margin uniformly, so the smaller of
// the two scaled margins is used.
func (u UnitBuf) ExtendBorderPel(margin int, scaleChroma bool) {
	for i, b := range u.Bufs {
		m := margin
		if scaleChroma {
			comp := ComponentID(i)
			m = min(margin>>u.ChromaFormat.ScaleX(comp), margin>>u.ChromaFormat.ScaleY(comp))
		}
		b.ExtendBorderPel(m)
	}
}
