// Package astar provides a generic, deadline-aware A* search.
//
// The search knows nothing about star maps: callers supply the start state
// and three closures (successors, heuristic, goal test) and get back the
// cheapest path of states. States only need to be comparable, costs any
// integer or float type.
//
// Cancellation is cooperative. An optional wall-clock deadline is sampled
// once per state popped from the frontier, so one expansion is never
// interrupted halfway.
package astar
