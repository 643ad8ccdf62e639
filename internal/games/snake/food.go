package snake

import "math/rand"

// Food is the single item the snake is chasing.
type Food struct {
	Cell
	// Eaten is true when no food is on the board and a spawn is due.
	Eaten bool
}

// NewFood returns food that has not been placed yet.
func NewFood() *Food {
	return &Food{Eaten: true}
}

// SpawnResult reports what TrySpawn did.
type SpawnResult struct {
	Won  bool
	Cell Cell
}

// Spawner places food on free cells and detects the win condition.
type Spawner struct {
	geom  Geometry
	rng   *rand.Rand
	total int
}

// NewSpawner creates a spawner for a surface with totalCells addressable
// elements. The win threshold is capped by the grid size so that sampling
// always has a free cell to find.
func NewSpawner(g Geometry, rng *rand.Rand, totalCells int) *Spawner {
	return &Spawner{
		geom:  g,
		rng:   rng,
		total: min(totalCells, g.CellCount()),
	}
}

// Total returns the length at which the snake wins.
func (sp *Spawner) Total() int {
	return sp.total
}

// TrySpawn places food on a random cell the snake does not occupy.
// When the snake already fills Total cells it is marked won instead and
// nothing is sampled.
func (sp *Spawner) TrySpawn(s *Snake, f *Food) SpawnResult {
	if s.Len() >= sp.total {
		s.won = true
		return SpawnResult{Won: true}
	}

	// Terminates: the snake covers fewer cells than the grid holds.
	for {
		c := sp.geom.RandomCell(sp.rng)
		if s.Occupies(c) {
			continue
		}
		f.Cell = c
		f.Eaten = false
		return SpawnResult{Cell: c}
	}
}
