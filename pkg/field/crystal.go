package field

import (
	"sort"

	"github.com/google/uuid"
)

// CrystalConfig tunes pattern crystallization.
type CrystalConfig struct {
	StabilityThreshold float64
	MinClusterSize     int
}

func (c *CrystalConfig) normalize() {
	if c.StabilityThreshold == 0 {
		c.StabilityThreshold = 0.7
	}
	if c.MinClusterSize < 2 {
		c.MinClusterSize = 2
	}
}

// Crystal is an immutable snapshot of a stable keyword-coherent cluster.
// Crystals are append-only history: a later, larger crystal over an
// overlapping keyword set supersedes an older one without removing it.
type Crystal struct {
	ID        string
	Members   []string
	Keywords  []string
	Stability float64
	Step      int
}

// Crystallizer groups waves by shared keywords and promotes stable
// clusters to crystal records.
type Crystallizer struct {
	cfg      CrystalConfig
	crystals []Crystal
}

func NewCrystallizer(cfg CrystalConfig) *Crystallizer {
	cfg.normalize()
	return &Crystallizer{cfg: cfg}
}

// Count returns the number of crystals formed so far.
func (c *Crystallizer) Count() int { return len(c.crystals) }

// Crystals returns a copy of the append-only crystal list.
func (c *Crystallizer) Crystals() []Crystal {
	return append([]Crystal(nil), c.crystals...)
}

// Check clusters the field's waves by the share-a-keyword relation
// (transitively merged), scores each cluster by mean amplitude, and
// records every stable cluster not already covered by an existing
// crystal. Re-running against an unchanged field adds nothing.
func (c *Crystallizer) Check(f *ResonanceField) []Crystal {
	n := len(f.order)
	if n < c.cfg.MinClusterSize {
		return nil
	}

	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	// Union every pair of waves sharing a keyword token, via a
	// keyword -> first owner map instead of a pairwise scan.
	firstOwner := map[string]int{}
	for i, id := range f.order {
		w := f.waves[id]
		for _, k := range w.Keywords {
			if j, ok := firstOwner[k]; ok {
				union(j, i)
			} else {
				firstOwner[k] = i
			}
		}
	}

	clusters := map[int][]int{}
	for i := 0; i < n; i++ {
		root := find(i)
		clusters[root] = append(clusters[root], i)
	}

	formed := make([]Crystal, 0)
	for _, members := range clusters {
		if len(members) < c.cfg.MinClusterSize {
			continue
		}
		waves := make([]*Wave, 0, len(members))
		ids := make([]string, 0, len(members))
		var ampSum float64
		for _, i := range members {
			w := f.waves[f.order[i]]
			waves = append(waves, w)
			ids = append(ids, w.ID)
			ampSum += w.Amplitude
		}
		stability := ampSum / float64(len(waves))
		if stability <= c.cfg.StabilityThreshold {
			continue
		}
		sort.Strings(ids)
		if c.covered(ids) {
			continue
		}
		formed = append(formed, Crystal{
			ID:        uuid.NewString(),
			Members:   ids,
			Keywords:  commonKeywords(waves),
			Stability: stability,
			Step:      f.step,
		})
	}
	c.crystals = append(c.crystals, formed...)
	return formed
}

// covered reports whether an existing crystal's member set is a superset
// of the sorted candidate member IDs.
func (c *Crystallizer) covered(ids []string) bool {
	for _, cr := range c.crystals {
		if len(cr.Members) < len(ids) {
			continue
		}
		existing := make(map[string]struct{}, len(cr.Members))
		for _, m := range cr.Members {
			existing[m] = struct{}{}
		}
		all := true
		for _, id := range ids {
			if _, ok := existing[id]; !ok {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// commonKeywords intersects keyword sets across all cluster members.
// Transitively merged clusters may intersect to nothing; the crystal is
// still recorded with the member list.
func commonKeywords(waves []*Wave) []string {
	if len(waves) == 0 {
		return nil
	}
	out := make([]string, 0, len(waves[0].Keywords))
	for _, k := range waves[0].Keywords {
		shared := true
		for _, w := range waves[1:] {
			if !w.hasKeyword(k) {
				shared = false
				break
			}
		}
		if shared {
			out = append(out, k)
		}
	}
	return out
}
