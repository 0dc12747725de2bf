// Package content loads the static item pools for each game kind.
//
// Pools are embedded JSON files under data/. Setting CONTENT_DIR (passed in
// as dir) replaces them with <dir>/<kind>.json. A pool is immutable once
// loaded and safe to share between sessions.
package content

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"wordquest/internal/models"
)

//go:embed data/*.json
var embedded embed.FS

const (
	MinDifficulty = 1
	MaxDifficulty = 6
)

var ErrEmptyPool = errors.New("content: pool is empty")

// Pool is an immutable list of items for one game kind
type Pool struct {
	kind  models.GameKind
	items []models.Item
	byID  map[string]int
}

// NewPool validates items and builds a pool. Items are copied.
func NewPool(kind models.GameKind, items []models.Item) (*Pool, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%s: %w", kind, ErrEmptyPool)
	}
	p := &Pool{
		kind:  kind,
		items: make([]models.Item, 0, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	for i, it := range items {
		if it.Kind == "" {
			it.Kind = kind
		}
		if err := Validate(kind, it); err != nil {
			return nil, fmt.Errorf("%s item %d: %w", kind, i, err)
		}
		if _, dup := p.byID[it.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate item id %q", kind, it.ID)
		}
		p.byID[it.ID] = len(p.items)
		p.items = append(p.items, it.Clone())
	}
	return p, nil
}

// Load reads the pool for kind from dir, or from the embedded data when dir is empty
func Load(kind models.GameKind, dir string) (*Pool, error) {
	var (
		raw []byte
		err error
	)
	name := string(kind) + ".json"
	if dir != "" {
		raw, err = os.ReadFile(filepath.Join(dir, name))
	} else {
		raw, err = embedded.ReadFile("data/" + name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s pool: %w", kind, err)
	}

	var items []models.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to parse %s pool: %w", kind, err)
	}
	return NewPool(kind, items)
}

// LoadAll loads a pool for every game kind
func LoadAll(dir string) (map[models.GameKind]*Pool, error) {
	pools := make(map[models.GameKind]*Pool, len(models.AllKinds))
	for _, kind := range models.AllKinds {
		p, err := Load(kind, dir)
		if err != nil {
			return nil, err
		}
		pools[kind] = p
	}
	return pools, nil
}

// Kind returns the game kind of the pool
func (p *Pool) Kind() models.GameKind { return p.kind }

// Len returns the number of items
func (p *Pool) Len() int { return len(p.items) }

// Items returns the items in authored order. Callers must not modify them.
func (p *Pool) Items() []models.Item { return p.items }

// Get looks up an item by id
func (p *Pool) Get(id string) (models.Item, bool) {
	i, ok := p.byID[id]
	if !ok {
		return models.Item{}, false
	}
	return p.items[i], true
}

// IDs returns every item id in authored order
func (p *Pool) IDs() []string {
	ids := make([]string, len(p.items))
	for i, it := range p.items {
		ids[i] = it.ID
	}
	return ids
}

// BandCoverage counts items per difficulty level
func (p *Pool) BandCoverage() map[int]int {
	out := make(map[int]int, MaxDifficulty)
	for d := MinDifficulty; d <= MaxDifficulty; d++ {
		out[d] = 0
	}
	for _, it := range p.items {
		out[it.Difficulty]++
	}
	return out
}

// CountInRange counts items with difficulty in [min, max]
func (p *Pool) CountInRange(min, max int) int {
	n := 0
	for _, it := range p.items {
		if it.Difficulty >= min && it.Difficulty <= max {
			n++
		}
	}
	return n
}
