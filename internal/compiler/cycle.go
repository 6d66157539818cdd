package compiler

import (
	"fmt"
	"slices"
	"strings"
)

// checkRequiredCycles reports records that can never be finitely
// constructed: a required, non-null record field fills the empty
// instance with the referenced record's empty instance, so a cycle of
// such fields never terminates.
//
// The algorithm:
//  1. Build a record -> record graph from required record fields (a
//     record union contributes its first member, which supplies the default)
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or a self-loop as a schema error
func checkRequiredCycles(models []*RecordModel) CompileErrors {
	graph := buildRequiredGraph(models)
	byName := make(map[string]*RecordModel, len(models))
	for _, m := range models {
		byName[m.Name] = m
	}

	var errs CompileErrors
	for _, scc := range tarjanSCC(graph) {
		if len(scc) == 1 && !hasSelfLoop(scc[0], graph) {
			continue
		}
		path := reconstructCyclePath(scc, graph)
		first := byName[path[0]]
		errs = append(errs, &CompileError{
			Record:  first.Name,
			Code:    ErrRequiredCycle,
			Message: fmt.Sprintf("required fields form a cycle: %s (make one of them optional or nullable)", strings.Join(path, " -> ")),
			Pos:     first.Decl.Pos,
		})
	}
	return errs
}

// dependencyGraph maps a record name to the records its empty instance
// needs.
type dependencyGraph map[string][]string

func buildRequiredGraph(models []*RecordModel) dependencyGraph {
	graph := make(dependencyGraph, len(models))
	for _, m := range models {
		edges := []string{}
		for _, f := range m.Fields {
			if !f.Required || f.Nullable() {
				continue
			}
			if f.Default.Kind == DefaultRecord && f.Default.Record != nil {
				edges = append(edges, f.Default.Record.Name)
			}
		}
		graph[m.Name] = edges
	}
	return graph
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph dependencyGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order so results are deterministic.
func tarjanSCC(graph dependencyGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the stack and create an SCC.
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.Sort(scc)
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	slices.Sort(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// reconstructCyclePath builds a cycle path through an SCC, starting and
// ending at its first member. A self-loop yields [a, a].
func reconstructCyclePath(scc []string, graph dependencyGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	sccSet := make(map[string]bool)
	for _, node := range scc {
		sccSet[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}

		if next == "" {
			break
		}

		path = append(path, next)

		if next == start {
			break
		}

		current = next
	}

	return path
}
