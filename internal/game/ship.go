package game

// ShipType describes one entry in the fixed ship catalog.
type ShipType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Catalog ship ids.
const (
	Carrier    = "carrier"
	Battleship = "battleship"
	Cruiser    = "cruiser"
	Submarine  = "submarine"
	Destroyer  = "destroyer"
)

// Catalog is the standard five-ship fleet, 17 cells total.
var Catalog = []ShipType{
	{ID: Carrier, Name: "Carrier", Size: 5},
	{ID: Battleship, Name: "Battleship", Size: 4},
	{ID: Cruiser, Name: "Cruiser", Size: 3},
	{ID: Submarine, Name: "Submarine", Size: 3},
	{ID: Destroyer, Name: "Destroyer", Size: 2},
}

// SizeOf returns the size of a catalog ship, or false for an unknown id.
func SizeOf(shipID string) (int, bool) {
	for _, s := range Catalog {
		if s.ID == shipID {
			return s.Size, true
		}
	}
	return 0, false
}
