package game

import (
	"errors"
	"math/rand"
)

// Placement assigns one catalog ship to a start cell and orientation.
type Placement struct {
	ShipID      string      `json:"shipId"`
	Row         int         `json:"row"`
	Col         int         `json:"col"`
	Orientation Orientation `json:"orientation"`
}

// RandomPlacements produces a uniform-random layout for the full catalog with
// no overlaps, retrying rejected positions up to a fixed budget.
func RandomPlacements() ([]Placement, error) {
	b := NewBoard()
	out := make([]Placement, 0, len(Catalog))
	tries := 0
	for _, st := range Catalog {
		for {
			if tries > 10000 {
				return nil, errors.New("failed to place ships")
			}
			tries++
			o := Horizontal
			if rand.Intn(2) == 0 {
				o = Vertical
			}
			row := rand.Intn(BoardSize)
			col := rand.Intn(BoardSize)
			if !b.Place(st.ID, row, col, o) {
				continue
			}
			out = append(out, Placement{ShipID: st.ID, Row: row, Col: col, Orientation: o})
			break
		}
	}
	return out, nil
}
