package entity

import (
	"fmt"

	"github.com/gridplay/gridgame-backend/internal/apperror"
)

const (
	EmptyCell = ""

	MarkX = "X"
	MarkO = "O"
)

// Board is a fixed-size grid of cell marks. Dimensions are set at
// construction and never change; only GameSession writes to it.
type Board struct {
	rows  int
	cols  int
	cells [][]string
}

func NewBoard(rows, cols int) (*Board, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: %dx%d", apperror.ErrMalformedDimensions, rows, cols)
	}

	cells := make([][]string, rows)
	for r := range cells {
		cells[r] = make([]string, cols)
		for c := range cells[r] {
			cells[r][c] = EmptyCell
		}
	}

	return &Board{rows: rows, cols: cols, cells: cells}, nil
}

func (that *Board) Rows() int { return that.rows }

func (that *Board) Cols() int { return that.cols }

func (that *Board) Get(row, col int) (string, error) {
	if err := that.checkRange(row, col); err != nil {
		return EmptyCell, err
	}

	return that.cells[row][col], nil
}

// Set writes a mark without an occupancy check; guarding against
// overwriting a non-empty cell is the caller's job.
func (that *Board) Set(row, col int, mark string) error {
	if err := that.checkRange(row, col); err != nil {
		return err
	}

	that.cells[row][col] = mark

	return nil
}

func (that *Board) IsFull() bool {
	for _, row := range that.cells {
		for _, cell := range row {
			if cell == EmptyCell {
				return false
			}
		}
	}

	return true
}

// Winner scans all rows, all columns and, on square boards only, the two
// full-length diagonals. A line wins when every cell holds the same
// non-empty mark. Returns EmptyCell when there is no winner.
func (that *Board) Winner() string {
	for r := range that.cells {
		if mark := that.lineWinner(r, 0, 0, 1); mark != EmptyCell {
			return mark
		}
	}

	for c := 0; c < that.cols; c++ {
		if mark := that.lineWinner(0, c, 1, 0); mark != EmptyCell {
			return mark
		}
	}

	// diagonal wins are undefined on non-square boards
	if that.rows != that.cols {
		return EmptyCell
	}

	if mark := that.lineWinner(0, 0, 1, 1); mark != EmptyCell {
		return mark
	}

	return that.lineWinner(0, that.cols-1, 1, -1)
}

// Grid returns a deep copy of the cells for snapshots.
func (that *Board) Grid() [][]string {
	grid := make([][]string, that.rows)
	for r, row := range that.cells {
		grid[r] = make([]string, that.cols)
		copy(grid[r], row)
	}

	return grid
}

func (that *Board) checkRange(row, col int) error {
	if row < 0 || row >= that.rows || col < 0 || col >= that.cols {
		return fmt.Errorf("%w: (%d,%d) on %dx%d board", apperror.ErrOutOfRange, row, col, that.rows, that.cols)
	}

	return nil
}

// lineWinner walks a line from (row,col) by (dr,dc) to the board edge.
func (that *Board) lineWinner(row, col, dr, dc int) string {
	first := that.cells[row][col]
	if first == EmptyCell {
		return EmptyCell
	}

	r, c := row, col
	for {
		r += dr
		c += dc

		if r < 0 || r >= that.rows || c < 0 || c >= that.cols {
			return first
		}

		if that.cells[r][c] != first {
			return EmptyCell
		}
	}
}
