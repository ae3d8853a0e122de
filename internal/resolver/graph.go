package resolver

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// curlyBrace matches {path.to.token} references.
var curlyBrace = regexp.MustCompile(`\{([^{}]+)\}`)

// DependencyGraph represents a directed graph of token dependencies
type DependencyGraph struct {
	// adjacency list: token name -> list of tokens it depends on
	dependencies map[string][]string
	// all token names in the graph, sorted
	nodes []string
}

// BuildDependencyGraph builds a dependency graph from token values keyed
// by hyphenated token name.
func BuildDependencyGraph(values map[string]string) *DependencyGraph {
	graph := &DependencyGraph{
		dependencies: make(map[string][]string),
	}
	for name, value := range values {
		graph.nodes = append(graph.nodes, name)
		if deps := References(value); len(deps) > 0 {
			graph.dependencies[name] = deps
		}
	}
	slices.Sort(graph.nodes)
	return graph
}

// References lists the token names a value refers to, with curly braces
// ({color.base}) or as a JSON pointer (#/color/base).
func References(value string) []string {
	var deps []string
	for _, match := range curlyBrace.FindAllStringSubmatch(value, -1) {
		deps = append(deps, strings.ReplaceAll(strings.TrimSpace(match[1]), ".", "-"))
	}
	if path, ok := strings.CutPrefix(value, "#/"); ok {
		deps = append(deps, strings.ReplaceAll(path, "/", "-"))
	}
	return deps
}

// GetDependencies returns the list of tokens that the given token depends on
func (g *DependencyGraph) GetDependencies(tokenName string) []string {
	return g.dependencies[tokenName]
}

// FindCycle returns the cycle path if one exists, or nil if no cycle
func (g *DependencyGraph) FindCycle() []string {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	for _, node := range g.nodes {
		if cycle := g.findCycleDFS(node, visited, recStack, nil); cycle != nil {
			return cycle
		}
	}
	return nil
}

func (g *DependencyGraph) findCycleDFS(node string, visited, recStack map[string]bool, path []string) []string {
	if recStack[node] {
		start := slices.Index(path, node)
		if start == -1 {
			panic(fmt.Sprintf("cycle detection invariant violated: node %q in recStack but not in path %v", node, path))
		}
		return append(slices.Clone(path[start:]), node)
	}
	if visited[node] {
		return nil
	}

	visited[node] = true
	recStack[node] = true
	path = append(path, node)

	for _, dep := range g.dependencies[node] {
		if cycle := g.findCycleDFS(dep, visited, recStack, path); cycle != nil {
			return cycle
		}
	}

	recStack[node] = false
	return nil
}

// HasCycle returns true if the graph contains a circular dependency
func (g *DependencyGraph) HasCycle() bool {
	return g.FindCycle() != nil
}

// TopologicalSort returns tokens in dependency order (dependencies first)
// Returns error if graph contains a cycle
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	if cycle := g.FindCycle(); cycle != nil {
		return nil, &CircularReferenceError{Cycle: cycle}
	}

	visited := make(map[string]bool)
	var result []string
	for _, node := range g.nodes {
		if !visited[node] {
			g.topologicalSortDFS(node, visited, &result)
		}
	}
	return result, nil
}

func (g *DependencyGraph) topologicalSortDFS(node string, visited map[string]bool, stack *[]string) {
	visited[node] = true
	for _, dep := range g.dependencies[node] {
		if !visited[dep] {
			g.topologicalSortDFS(dep, visited, stack)
		}
	}
	*stack = append(*stack, node)
}
