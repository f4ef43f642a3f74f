package recalc

// WouldCreateCycle reports whether giving target content that holds refs
// would make target depend on itself. When it would, path lists the
// Variables from the first one target would read up to target itself.
//
// The search only reads the graph.
func WouldCreateCycle(target *Variable, refs []*Reference) (bool, []*Variable) {
	var starts []*Variable
	for _, r := range refs {
		if r == nil {
			continue
		}
		starts = append(starts, r.targets(r.current())...)
	}
	path, found := findCycle(target, starts)
	return found, path
}

// findCycle runs a breadth-first search from starts along each Variable's
// forward edges, looking for target. Every Variable is expanded at most
// once and at most one lock is held at a time.
func findCycle(target *Variable, starts []*Variable) ([]*Variable, bool) {
	if target == nil {
		return nil, false
	}
	visited := make(map[*Variable]bool)
	parent := make(map[*Variable]*Variable)
	var queue []*Variable

	for _, s := range starts {
		if s == nil || visited[s] {
			continue
		}
		if s == target {
			return []*Variable{target}, true
		}
		visited[s] = true
		queue = append(queue, s)
	}

	for len(queue) > 0 {
		v := queue[0]
		queue[0] = nil
		queue = queue[1:]

		for _, next := range v.Dependencies() {
			if next == target {
				return tracePath(parent, v, target), true
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			parent[next] = v
			queue = append(queue, next)
		}
	}
	return nil, false
}

// tracePath rebuilds start -> ... -> last -> target from the BFS parents.
func tracePath(parent map[*Variable]*Variable, last, target *Variable) []*Variable {
	var rev []*Variable
	for v := last; v != nil; v = parent[v] {
		rev = append(rev, v)
	}
	path := make([]*Variable, 0, len(rev)+1)
	for i := len(rev) - 1; i >= 0; i-- {
		path = append(path, rev[i])
	}
	return append(path, target)
}
