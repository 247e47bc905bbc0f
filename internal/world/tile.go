package world

// GroundTile is a bit set describing the ground of a tile.
type GroundTile uint8

const (
	Void  GroundTile = 0b00000000
	Grass GroundTile = 0b00000001
	Sand  GroundTile = 0b00000010
	Land  GroundTile = 0b01111111 // Any land kind
	Ocean GroundTile = 0b10000000
)

// Is reports whether the tile matches any bit of mask.
func (g GroundTile) Is(mask GroundTile) bool { return g&mask != 0 }

// String returns the display name.
func (g GroundTile) String() string {
	switch g {
	case Void:
		return "..."
	case Grass:
		return "grass"
	case Sand:
		return "sand"
	case Land:
		return "any land"
	case Ocean:
		return "sea"
	default:
		return "mixed"
	}
}

// ParseGroundMask converts catalog names ("grass", "sand", "land", "ocean")
// into a mask. Unknown names yield ok=false.
func ParseGroundMask(names []string) (mask GroundTile, ok bool) {
	for _, n := range names {
		switch n {
		case "grass":
			mask |= Grass
		case "sand":
			mask |= Sand
		case "land":
			mask |= Land
		case "ocean":
			mask |= Ocean
		default:
			return 0, false
		}
	}
	return mask, true
}
