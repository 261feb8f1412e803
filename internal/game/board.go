package game

// BoardSize is the side length of the square grid.
const BoardSize = 10

// Orientation is the axis a ship lies along.
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// Cell is one grid coordinate, 0-9 on both axes.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InBounds reports whether a coordinate lies on the grid.
func InBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

// Footprint returns the size cells covered from the start cell along the
// orientation. No bounds checking.
func Footprint(size, row, col int, o Orientation) []Cell {
	cells := make([]Cell, 0, size)
	for i := 0; i < size; i++ {
		if o == Horizontal {
			cells = append(cells, Cell{Row: row, Col: col + i})
		} else {
			cells = append(cells, Cell{Row: row + i, Col: col})
		}
	}
	return cells
}

// PlacedShip is one catalog ship placed on a board.
type PlacedShip struct {
	ShipID      string      `json:"shipId"`
	Cells       []Cell      `json:"cells"`
	Orientation Orientation `json:"orientation"`
	Hits        int         `json:"hits"`
}

// Sunk reports whether every cell of the ship has been hit.
func (p *PlacedShip) Sunk() bool {
	return len(p.Cells) > 0 && p.Hits >= len(p.Cells)
}

// Occupies reports whether the ship covers the given coordinate.
func (p *PlacedShip) Occupies(row, col int) bool {
	for _, c := range p.Cells {
		if c.Row == row && c.Col == col {
			return true
		}
	}
	return false
}

// Result classifies one attack.
type Result string

const (
	ResultHit             Result = "hit"
	ResultMiss            Result = "miss"
	ResultSunk            Result = "sunk"
	ResultAlreadyAttacked Result = "already_attacked"
)

// Outcome is the classification of a single attack.
type Outcome struct {
	Result     Result `json:"result"`
	SunkShipID string `json:"sunkShipId,omitempty"`
}

// Board is one player's grid: placed ships plus the cells already attacked.
type Board struct {
	Ships    []*PlacedShip `json:"ships"`
	Attacked []Cell        `json:"attacked"`
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{}
}

// CanPlace reports whether a catalog ship fits at the start cell along the
// orientation: fully in bounds and overlapping no placed ship. Does not mutate.
func (b *Board) CanPlace(shipID string, row, col int, o Orientation) bool {
	size, ok := SizeOf(shipID)
	if !ok {
		return false
	}
	if o != Horizontal && o != Vertical {
		return false
	}
	for _, c := range Footprint(size, row, col, o) {
		if !InBounds(c.Row, c.Col) {
			return false
		}
		if b.ShipAt(c.Row, c.Col) != nil {
			return false
		}
	}
	return true
}

// Place records the ship if CanPlace allows it. No partial mutation on failure.
func (b *Board) Place(shipID string, row, col int, o Orientation) bool {
	if !b.CanPlace(shipID, row, col, o) {
		return false
	}
	size, _ := SizeOf(shipID)
	b.Ships = append(b.Ships, &PlacedShip{
		ShipID:      shipID,
		Cells:       Footprint(size, row, col, o),
		Orientation: o,
	})
	return true
}

// ShipAt returns the placed ship covering the coordinate, or nil.
func (b *Board) ShipAt(row, col int) *PlacedShip {
	for _, s := range b.Ships {
		if s.Occupies(row, col) {
			return s
		}
	}
	return nil
}

// WasAttacked reports whether the cell has already been resolved.
func (b *Board) WasAttacked(row, col int) bool {
	for _, c := range b.Attacked {
		if c.Row == row && c.Col == col {
			return true
		}
	}
	return false
}

// ResolveAttack resolves an attack on the cell. A repeat target returns
// already_attacked without mutating anything. Callers must validate bounds.
func (b *Board) ResolveAttack(row, col int) Outcome {
	if b.WasAttacked(row, col) {
		return Outcome{Result: ResultAlreadyAttacked}
	}
	target := Cell{Row: row, Col: col}
	outcome := ResolveShot(target, b.Ships, b.Attacked)
	b.Attacked = append(b.Attacked, target)
	if ship := b.ShipAt(row, col); ship != nil {
		ship.Hits++
	}
	return outcome
}

// AllSunk reports whether every placed ship is sunk. Only meaningful once the
// full fleet is placed; enforcing that is the caller's job.
func (b *Board) AllSunk() bool {
	if len(b.Ships) == 0 {
		return false
	}
	for _, s := range b.Ships {
		if !s.Sunk() {
			return false
		}
	}
	return true
}
