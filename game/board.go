package game

import (
	"fmt"
	"slices"
)

// Region is a single ownable territory made of one or more hex cells. Owner and dice live
// in GameState; a Region only describes topology.
type Region struct {
	ID       int        // Stable index into Board.Regions
	Hexes    []HexCoord // Cells making up the region
	Position HexCoord   // Cell closest to the region's centroid
	Adjacent []int      // IDs of adjacent regions, sorted
}

// Board is the static topology of a game: regions and the adjacency between them. It is
// immutable once built.
type Board struct {
	Regions []*Region
	cells   map[HexCoord]int
}

// NewBoard builds a board from the cells of each region. Two regions are adjacent when any
// of their cells are hex neighbors.
func NewBoard(regions [][]HexCoord) (*Board, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("cannot build board: no regions")
	}
	b := &Board{
		Regions: make([]*Region, len(regions)),
		cells:   make(map[HexCoord]int),
	}
	for id, hexes := range regions {
		if len(hexes) == 0 {
			return nil, fmt.Errorf("cannot build board: region %d has no cells", id)
		}
		for _, h := range hexes {
			if other, ok := b.cells[h]; ok {
				return nil, fmt.Errorf("cannot build board: cell %s belongs to regions %d and %d", h, other, id)
			}
			b.cells[h] = id
		}
		b.Regions[id] = &Region{
			ID:       id,
			Hexes:    slices.Clone(hexes),
			Position: centerHex(hexes),
			Adjacent: []int{},
		}
	}

	// Add borders between regions
	for id, hexes := range regions {
		for _, h := range hexes {
			for _, n := range h.Neighbors() {
				if other, ok := b.cells[n]; ok && other != id {
					b.addBorder(id, other)
				}
			}
		}
	}
	for _, r := range b.Regions {
		slices.Sort(r.Adjacent)
	}
	return b, nil
}

// NewCellBoard builds a board where every region is a single cell.
func NewCellBoard(cells ...HexCoord) (*Board, error) {
	regions := make([][]HexCoord, len(cells))
	for i, c := range cells {
		regions[i] = []HexCoord{c}
	}
	return NewBoard(regions)
}

// addBorder adds a bidirectional border between two regions.
func (b *Board) addBorder(id1, id2 int) {
	if !slices.Contains(b.Regions[id1].Adjacent, id2) {
		b.Regions[id1].Adjacent = append(b.Regions[id1].Adjacent, id2)
	}
	if !slices.Contains(b.Regions[id2].Adjacent, id1) {
		b.Regions[id2].Adjacent = append(b.Regions[id2].Adjacent, id1)
	}
}

func (b *Board) NumRegions() int {
	return len(b.Regions)
}

func (b *Board) Valid(id int) bool {
	return id >= 0 && id < len(b.Regions)
}

// Neighbors returns the regions adjacent to id. An invalid id is a programming error.
func (b *Board) Neighbors(id int) []int {
	if !b.Valid(id) {
		panic(fmt.Sprintf("region %d does not exist", id))
	}
	return b.Regions[id].Adjacent
}

// IsAdjacent reports whether two distinct regions share a border.
func (b *Board) IsAdjacent(id1, id2 int) bool {
	if id1 == id2 || !b.Valid(id1) || !b.Valid(id2) {
		return false
	}
	_, found := slices.BinarySearch(b.Regions[id1].Adjacent, id2)
	return found
}

// RegionAt returns the region covering a cell.
func (b *Board) RegionAt(c HexCoord) (int, bool) {
	id, ok := b.cells[c]
	return id, ok
}

// ConnectedComponents returns the maximal groups of regions owned by player that are
// connected through adjacency, largest first (ties by lowest region id). Each group is
// sorted by id.
func (b *Board) ConnectedComponents(owners []int, player int) [][]int {
	visited := make([]bool, len(b.Regions))
	var components [][]int
	for id, owner := range owners {
		if owner != player || visited[id] {
			continue
		}
		// Just BFS
		component := []int{}
		queue := []int{id}
		visited[id] = true
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			component = append(component, current)
			for _, adjID := range b.Regions[current].Adjacent {
				if !visited[adjID] && owners[adjID] == player {
					visited[adjID] = true
					queue = append(queue, adjID)
				}
			}
		}
		slices.Sort(component)
		components = append(components, component)
	}
	slices.SortStableFunc(components, func(x, y []int) int {
		if len(x) != len(y) {
			return len(y) - len(x)
		}
		return x[0] - y[0]
	})
	return components
}

// Validate checks that adjacency is symmetric and irreflexive and that the board forms a
// single connected graph.
func (b *Board) Validate() error {
	for _, r := range b.Regions {
		for _, adjID := range r.Adjacent {
			if adjID == r.ID {
				return &InvariantViolation{Detail: fmt.Sprintf("region %d is adjacent to itself", r.ID)}
			}
			if !b.Valid(adjID) {
				return &InvariantViolation{Detail: fmt.Sprintf("region %d borders unknown region %d", r.ID, adjID)}
			}
			if !slices.Contains(b.Regions[adjID].Adjacent, r.ID) {
				return &InvariantViolation{Detail: fmt.Sprintf("adjacency %d-%d is not symmetric", r.ID, adjID)}
			}
		}
	}
	all := make([]int, len(b.Regions))
	if components := b.ConnectedComponents(all, 0); len(components) != 1 {
		return fmt.Errorf("board is not connected: %d separate groups", len(components))
	}
	return nil
}

// centerHex picks the cell nearest to the centroid of hexes.
func centerHex(hexes []HexCoord) HexCoord {
	var x, y float64
	for _, h := range hexes {
		x += float64(h.Q)
		y += float64(h.R)
	}
	x /= float64(len(hexes))
	y /= float64(len(hexes))

	nearest := hexes[0]
	minDistance := -1.0
	for _, h := range hexes {
		dx, dy := x-float64(h.Q), y-float64(h.R)
		d := dx*dx + dy*dy
		if minDistance < 0 || d < minDistance {
			minDistance = d
			nearest = h
		}
	}
	return nearest
}
