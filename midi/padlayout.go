package midi

import "camelot/wheel"

// Pad layout for the 24 wheel positions on an 8x8 grid. Each ring is a 4x3
// block in the top three rows, slots running left to right then downwards:
// outer (major) ring in columns 0-3, inner (minor) ring in columns 4-7.
const (
	padTopRow    = 7
	padBlockCols = 4
)

// PadFor returns the grid pad of a wheel position
func PadFor(p wheel.Position) (row, col int) {
	idx := p.Slot() - 1
	row = padTopRow - idx/padBlockCols
	col = idx % padBlockCols
	if p.Ring() == wheel.RingInner {
		col += padBlockCols
	}
	return row, col
}

// PositionAt returns the wheel position mapped to a pad, if any
func PositionAt(row, col int) (wheel.Position, bool) {
	if row > padTopRow || row <= padTopRow-wheel.NumSlots/padBlockCols || col < 0 || col >= 2*padBlockCols {
		return 0, false
	}
	ring := wheel.RingOuter
	if col >= padBlockCols {
		ring = wheel.RingInner
		col -= padBlockCols
	}
	slot := (padTopRow-row)*padBlockCols + col + 1
	return wheel.At(ring, slot), true
}
