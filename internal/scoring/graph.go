package scoring

import "fmt"

// Graph indexes a task collection by ID for dependency-aware scoring.
// Dependencies on IDs outside the collection are ignored.
type Graph struct {
	order      []string
	tasks      map[string]*Task
	dependents map[string][]string
}

// NewGraph indexes tasks. The graph keeps pointers into the slice, so the
// caller must not modify it while the graph is in use.
func NewGraph(tasks []Task) (*Graph, error) {
	g := &Graph{
		order:      make([]string, 0, len(tasks)),
		tasks:      make(map[string]*Task, len(tasks)),
		dependents: make(map[string][]string),
	}
	for i := range tasks {
		t := &tasks[i]
		if _, dup := g.tasks[t.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTaskID, t.ID)
		}
		g.tasks[t.ID] = t
		g.order = append(g.order, t.ID)
	}
	for _, id := range g.order {
		seen := map[string]bool{}
		for _, dep := range g.tasks[id].Dependencies {
			if _, ok := g.tasks[dep]; !ok || seen[dep] {
				continue
			}
			seen[dep] = true
			g.dependents[dep] = append(g.dependents[dep], id)
		}
	}
	return g, nil
}

func (g *Graph) Task(id string) (*Task, bool) {
	t, ok := g.tasks[id]
	return t, ok
}

// Dependents returns the IDs of tasks that list id as a dependency, in
// collection order.
func (g *Graph) Dependents(id string) []string {
	return g.dependents[id]
}

// CheckCycles walks every dependency edge, complete tasks included, and
// returns a *CircularDependencyError for the first cycle found.
func (g *Graph) CheckCycles() error {
	const (
		white = 0 // unvisited
		gray  = 1 // on the current path
		black = 2 // finished
	)
	color := make(map[string]int, len(g.order))
	var path []string
	var cycle []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		color[id] = gray
		path = append(path, id)
		for _, dep := range g.tasks[id].Dependencies {
			if _, ok := g.tasks[dep]; !ok {
				continue
			}
			switch color[dep] {
			case gray:
				cycle = cyclePath(path, dep)
				return true
			case white:
				if dfs(dep) {
					return true
				}
			}
		}
		path = path[:len(path)-1]
		color[id] = black
		return false
	}

	for _, id := range g.order {
		if color[id] == white && dfs(id) {
			return &CircularDependencyError{Cycle: cycle}
		}
	}
	return nil
}

// WouldCycle reports whether making task id depend on deps would introduce a
// cycle, returning the error that scoring would then produce.
func (g *Graph) WouldCycle(id string, deps []string) error {
	var tasks []Task
	for _, tid := range g.order {
		t := *g.tasks[tid]
		if tid == id {
			t.Dependencies = deps
		}
		tasks = append(tasks, t)
	}
	if _, ok := g.tasks[id]; !ok {
		tasks = append(tasks, Task{ID: id, Dependencies: deps})
	}
	next, err := NewGraph(tasks)
	if err != nil {
		return err
	}
	return next.CheckCycles()
}

// cyclePath returns the part of path starting at id, closed with id.
func cyclePath(path []string, id string) []string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == id {
			out := append([]string(nil), path[i:]...)
			return append(out, id)
		}
	}
	return []string{id, id}
}
