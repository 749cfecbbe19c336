package pelbuf

import "fmt"

// ComponentID identifies one plane of a picture.
type ComponentID int

const (
	CompY  ComponentID = iota // luma
	CompCb                    // blue-difference chroma
	CompCr                    // red-difference chroma

	MaxNumComponents = 3
)

func (c ComponentID) String() string {
	switch c {
	case CompY:
		return "Y"
	case CompCb:
		return "Cb"
	case CompCr:
		return "Cr"
	default:
		return fmt.Sprintf("ComponentID(%d)", int(c))
	}
}

// IsLuma reports whether c is the luma component.
func (c ComponentID) IsLuma() bool { return c == CompY }

// ChromaFormat is the chroma subsampling scheme of a picture.
type ChromaFormat int

const (
	Chroma400 ChromaFormat = iota // monochrome
	Chroma420
	Chroma422
	Chroma444

	numChromaFormats
)

func (cf ChromaFormat) String() string {
	switch cf {
	case Chroma400:
		return "4:0:0"
	case Chroma420:
		return "4:2:0"
	case Chroma422:
		return "4:2:2"
	case Chroma444:
		return "4:4:4"
	default:
		return fmt.Sprintf("ChromaFormat(%d)", int(cf))
	}
}

// Valid reports whether cf names a supported format.
func (cf ChromaFormat) Valid() bool { return cf >= Chroma400 && cf < numChromaFormats }

// NumComponents returns the number of planes present in cf: 1 for
// monochrome, 3 otherwise.
func (cf ChromaFormat) NumComponents() int {
	if cf == Chroma400 {
		return 1
	}
	return MaxNumComponents
}

// ScaleX returns the horizontal subsampling shift of comp under cf.
func (cf ChromaFormat) ScaleX(comp ComponentID) int {
	if comp == CompY {
		return 0
	}
	switch cf {
	case Chroma420, Chroma422:
		return 1
	default:
		return 0
	}
}

// ScaleY returns the vertical subsampling shift of comp under cf.
func (cf ChromaFormat) ScaleY(comp ComponentID) int {
	if comp == CompY {
		return 0
	}
	if cf == Chroma420 {
		return 1
	}
	return 0
}

// ParseChromaFormat accepts "400", "420", "422", "444" with or without
// colons.
func ParseChromaFormat(s string) (ChromaFormat, error) {
	switch s {
	case "400", "4:0:0", "mono":
		return Chroma400, nil
	case "420", "4:2:0":
		return Chroma420, nil
	case "422", "4:2:2":
		return Chroma422, nil
	case "444", "4:4:4":
		return Chroma444, nil
	default:
		return 0, fmt.Errorf("pelbuf: unknown chroma format %q", s)
	}
}
