package registry

import (
	"slices"
	"strings"
)

// MissingDependencies maps each feature id to the dependency ids that are not
// registered. Features whose dependencies all resolve are omitted.
func (r *Registry) MissingDependencies() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	missing := make(map[string][]string)
	for id, f := range r.features {
		for _, dep := range f.Dependencies() {
			if _, ok := r.features[dep]; !ok {
				missing[id] = append(missing[id], dep)
			}
		}
	}
	return missing
}

// DependencyCycles returns each distinct dependency cycle once, rotated so that
// its smallest id comes first. Self-dependencies are reported as one-element
// cycles.
func (r *Registry) DependencyCycles() [][]string {
	r.mu.RLock()
	graph := make(map[string][]string, len(r.features))
	for id, f := range r.features {
		graph[id] = f.Dependencies()
	}
	r.mu.RUnlock()

	const (
		unvisited = iota
		inStack
		done
	)

	state := make(map[string]int, len(graph))
	seen := make(map[string]bool)
	var cycles [][]string
	var stack []string

	var visit func(id string)
	visit = func(id string) {
		state[id] = inStack
		stack = append(stack, id)

		for _, dep := range graph[id] {
			if _, ok := graph[dep]; !ok {
				continue
			}
			switch state[dep] {
			case unvisited:
				visit(dep)
			case inStack:
				start := slices.Index(stack, dep)
				cycle := normalizeCycle(stack[start:])
				key := strings.Join(cycle, "\x00")
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[id] = done
	}

	ids := make([]string, 0, len(graph))
	for id := range graph {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if state[id] == unvisited {
			visit(id)
		}
	}
	return cycles
}

func normalizeCycle(path []string) []string {
	minIdx := 0
	for i, id := range path {
		if id < path[minIdx] {
			minIdx = i
		}
	}
	out := make([]string, 0, len(path))
	out = append(out, path[minIdx:]...)
	out = append(out, path[:minIdx]...)
	return out
}
