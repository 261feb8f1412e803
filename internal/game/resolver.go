package game

// ResolveShot classifies a shot against a ship layout given the shots already
// resolved on that board. The target must not appear in prior; repeat targets
// are the caller's concern. Pure: mutates nothing.
func ResolveShot(target Cell, ships []*PlacedShip, prior []Cell) Outcome {
	for _, s := range ships {
		if !s.Occupies(target.Row, target.Col) {
			continue
		}
		hits := 0
		for _, c := range s.Cells {
			if containsCell(prior, c) {
				hits++
			}
		}
		// Count the current hit too.
		if hits+1 >= len(s.Cells) {
			return Outcome{Result: ResultSunk, SunkShipID: s.ShipID}
		}
		return Outcome{Result: ResultHit}
	}
	return Outcome{Result: ResultMiss}
}

// AllShipsSunk reports whether every ship's footprint is fully covered by the
// given shots. False for an empty layout.
func AllShipsSunk(ships []*PlacedShip, shots []Cell) bool {
	if len(ships) == 0 {
		return false
	}
	for _, s := range ships {
		for _, c := range s.Cells {
			if !containsCell(shots, c) {
				return false
			}
		}
	}
	return true
}

func containsCell(cells []Cell, target Cell) bool {
	for _, c := range cells {
		if c == target {
			return true
		}
	}
	return false
}
