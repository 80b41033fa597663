package field

// EntanglementGraph maintains the symmetric linked-memory relation over
// wave IDs. Edges are added when pairwise interference exceeds the
// entanglement threshold and removed only when a wave is pruned from the
// field.
type EntanglementGraph struct {
	edges map[string]map[string]struct{}
	count int
}

func NewEntanglementGraph() *EntanglementGraph {
	return &EntanglementGraph{edges: map[string]map[string]struct{}{}}
}

// Link creates the symmetric edge between two waves and mirrors it onto
// both waves' entangled sets. Self-links are ignored.
func (g *EntanglementGraph) Link(a, b *Wave) {
	if a.ID == b.ID {
		return
	}
	if g.has(a.ID, b.ID) {
		return
	}
	g.addDirected(a.ID, b.ID)
	g.addDirected(b.ID, a.ID)
	g.count++
	a.Entangled[b.ID] = struct{}{}
	b.Entangled[a.ID] = struct{}{}
}

func (g *EntanglementGraph) addDirected(from, to string) {
	set, ok := g.edges[from]
	if !ok {
		set = map[string]struct{}{}
		g.edges[from] = set
	}
	set[to] = struct{}{}
}

func (g *EntanglementGraph) has(a, b string) bool {
	set, ok := g.edges[a]
	if !ok {
		return false
	}
	_, ok = set[b]
	return ok
}

// IsEntangled reports whether an edge exists between the two IDs.
func (g *EntanglementGraph) IsEntangled(a, b string) bool { return g.has(a, b) }

// Neighbors returns the IDs directly entangled with id.
func (g *EntanglementGraph) Neighbors(id string) []string {
	set := g.edges[id]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for other := range set {
		out = append(out, other)
	}
	return out
}

// Degree returns the number of direct partners of id.
func (g *EntanglementGraph) Degree(id string) int { return len(g.edges[id]) }

// EdgeCount returns the number of undirected edges.
func (g *EntanglementGraph) EdgeCount() int { return g.count }

// Neighborhood returns all IDs reachable from id within depth hops,
// excluding id itself.
func (g *EntanglementGraph) Neighborhood(id string, depth int) []string {
	visited := map[string]struct{}{id: {}}
	frontier := []string{id}
	for d := 0; d < depth && len(frontier) > 0; d++ {
		next := make([]string, 0, len(frontier))
		for _, wid := range frontier {
			for other := range g.edges[wid] {
				if _, seen := visited[other]; seen {
					continue
				}
				visited[other] = struct{}{}
				next = append(next, other)
			}
		}
		frontier = next
	}
	delete(visited, id)
	out := make([]string, 0, len(visited))
	for wid := range visited {
		out = append(out, wid)
	}
	return out
}

// RemoveWave drops id and every edge touching it, mirroring removal onto
// the surviving partners' entangled sets. Used by decay-driven pruning.
func (g *EntanglementGraph) RemoveWave(id string, lookup func(string) *Wave) {
	partners := g.edges[id]
	for other := range partners {
		if set, ok := g.edges[other]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(g.edges, other)
			}
		}
		if w := lookup(other); w != nil {
			delete(w.Entangled, id)
		}
		g.count--
	}
	delete(g.edges, id)
}
