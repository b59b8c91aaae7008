package collapse

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is returned when a sample, tile pool or output
	// size cannot be used.
	ErrInvalidConfiguration = errors.New("collapse: invalid configuration")

	// ErrEmptySelection means no unresolved cell was found while the run was
	// not done. It indicates broken bookkeeping and ends the run.
	ErrEmptySelection = errors.New("collapse: no unresolved cell to select")

	// ErrAlreadyResolved is returned by Collapse for a cell that is already resolved.
	ErrAlreadyResolved = errors.New("collapse: cell already resolved")

	// ErrOutOfBounds is returned for coordinates outside the output grid.
	ErrOutOfBounds = errors.New("collapse: coordinate out of bounds")
)

// StarvedStack reports that propagation wanted to remove the last candidate
// of a stack. The candidate is kept and the run continues.
type StarvedStack struct {
	Step int // step during which it happened
	X, Y int // coordinate of the starved cell
	// Offset from the resolved cell to the starved cell.
	Offset Direction
	TileID int // the candidate that failed the overlap check but was kept
	// Resolved is true when the starved cell had already been resolved.
	Resolved bool
}

func (s StarvedStack) Error() string {
	return fmt.Sprintf("collapse: stack at (%d,%d) ran out of valid tiles, keeping tile %d", s.X, s.Y, s.TileID)
}
