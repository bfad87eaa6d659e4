package layout

import (
	"strconv"
	"strings"
)

// Canvas coordinates are CSS pixels (96 dpi), the unit tldraw-like hosts use.
// This file converts author-facing lengths (settings values) into px.

// Unit represents the original unit of a length value as written in settings.
type Unit int

const (
	UnitNone Unit = iota // bare numbers, treated as px
	UnitPX
	UnitMM
	UnitCM
	UnitIN
	UnitPT
)

// Conversion constants between pt, px and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
	PxToMm = 25.4 / 96
	MmToPx = 1.0 / PxToMm
	PxToPt = 0.75
	PtToPx = 1.0 / PxToPt
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// ToMM converts this length to millimeters.
func (l Length) ToMM() float64 {
	switch l.Unit {
	case UnitMM:
		return l.Value
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	case UnitPT:
		return l.Value * PtToMm
	default:
		return l.Value * PxToMm
	}
}

// ToPX converts this length to canvas pixels.
func (l Length) ToPX() float64 {
	switch l.Unit {
	case UnitNone, UnitPX:
		return l.Value
	case UnitPT:
		return l.Value * PtToPx
	default:
		return l.ToMM() * MmToPx
	}
}

// ParseLength parses a length string such as "200", "35px", "12pt" or "1.5cm".
func ParseLength(value string) (Length, error) {
	lower := strings.ToLower(strings.TrimSpace(value))
	unit := UnitNone
	num := lower
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(lower, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(lower, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, err
	}
	return Length{Value: f, Unit: unit}, nil
}
