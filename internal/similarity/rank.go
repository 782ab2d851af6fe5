package similarity

import "sort"

// Item is a vector to be ranked, keyed by an identifier unique within a run.
type Item struct {
	ID     string
	Vector []float32
}

// Scored is the ranking output for a single item.
type Scored struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Rank scores every item against query and returns them ordered by score,
// highest first. Items with equal scores keep their input order.
func Rank(query []float32, items []Item) []Scored {
	scored := make([]Scored, 0, len(items))
	for _, item := range items {
		scored = append(scored, Scored{
			ID:    item.ID,
			Score: Cosine(query, item.Vector),
		})
	}

	SortByScore(scored)

	return scored
}

// SortByScore orders scored in place, highest score first, preserving the
// relative order of ties.
func SortByScore(scored []Scored) {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
}
