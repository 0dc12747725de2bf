package engine

import "wordquest/internal/models"

// Selector draws items from a pool. It never mutates its inputs; recording
// drawn ids is the caller's job.
type Selector struct {
	Rand Rand
}

// Next returns up to n distinct items with difficulty in band that are not in
// used. When every in-band item has been used, repeats are allowed. It fails
// with ErrPoolExhausted only when the band matches no item at all.
func (s Selector) Next(items []models.Item, band Band, used map[string]struct{}, n int) ([]models.Item, error) {
	if n < 1 {
		n = 1
	}

	var filtered, candidates []models.Item
	for _, it := range items {
		if !band.Contains(it.Difficulty) {
			continue
		}
		filtered = append(filtered, it)
		if _, ok := used[it.ID]; !ok {
			candidates = append(candidates, it)
		}
	}
	if len(filtered) == 0 {
		return nil, ErrPoolExhausted
	}
	if len(candidates) == 0 {
		candidates = filtered
	}
	if n > len(candidates) {
		n = len(candidates)
	}

	// partial Fisher-Yates over a private copy
	pick := make([]models.Item, len(candidates))
	copy(pick, candidates)
	for i := 0; i < n; i++ {
		j := i + s.Rand.IntN(len(pick)-i)
		pick[i], pick[j] = pick[j], pick[i]
	}
	return pick[:n:n], nil
}
