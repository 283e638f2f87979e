package astar

import (
	"container/heap"
	"errors"
	"time"

	"golang.org/x/exp/constraints"
)

var (
	// ErrNotFound means the frontier was exhausted without reaching a goal.
	ErrNotFound = errors.New("astar: no path")
	// ErrTimeout means the deadline passed before the search finished.
	ErrTimeout = errors.New("astar: deadline exceeded")
)

// Cost is any numeric cost type.
type Cost interface {
	constraints.Integer | constraints.Float
}

// Edge is a successor state and the cost of moving to it.
type Edge[N comparable, C Cost] struct {
	To   N
	Cost C
}

// Result is a found path. Path runs from the start state to the goal state,
// both included.
type Result[N comparable, C Cost] struct {
	Path     []N
	Cost     C
	Expanded int // states popped and expanded
}

// Options tune a search.
type Options struct {
	Deadline time.Time // zero means no deadline
	Now      func() time.Time
}

// Option modifies Options.
type Option func(*Options)

// WithDeadline stops the search with ErrTimeout once now is after deadline.
// A zero deadline disables the check.
func WithDeadline(deadline time.Time) Option {
	return func(o *Options) { o.Deadline = deadline }
}

// WithClock replaces time.Now for the deadline check.
func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Now = now }
}

type visit[N comparable, C Cost] struct {
	g         C
	parent    N
	hasParent bool
}

// Search runs A* from start. successors lists the states reachable from a
// state with their step cost, heuristic estimates the remaining cost (it must
// not overestimate for the result to be optimal) and goal reports whether a
// state is a goal.
//
// Exactly one outcome is returned: a Result with nil error, ErrNotFound, or
// ErrTimeout.
func Search[N comparable, C Cost](
	start N,
	successors func(N) []Edge[N, C],
	heuristic func(N) C,
	goal func(N) bool,
	options ...Option,
) (Result[N, C], error) {
	opts := Options{Now: time.Now}
	for _, o := range options {
		o(&opts)
	}

	var zero C
	best := map[N]visit[N, C]{start: {g: zero}}
	open := &priorityQueue[N, C]{{node: start, g: zero, f: heuristic(start)}}
	heap.Init(open)

	expanded := 0
	for open.Len() > 0 {
		item := heap.Pop(open).(queueItem[N, C])

		// Lazy deletion: a cheaper route to this state was queued after this entry.
		if v := best[item.node]; item.g > v.g {
			continue
		}
		if goal(item.node) {
			return Result[N, C]{
				Path:     reconstructPath(best, item.node),
				Cost:     item.g,
				Expanded: expanded,
			}, nil
		}
		if !opts.Deadline.IsZero() && opts.Now().After(opts.Deadline) {
			return Result[N, C]{Expanded: expanded}, ErrTimeout
		}

		expanded++
		for _, e := range successors(item.node) {
			g := item.g + e.Cost
			if v, seen := best[e.To]; seen && g >= v.g {
				continue
			}
			best[e.To] = visit[N, C]{g: g, parent: item.node, hasParent: true}
			heap.Push(open, queueItem[N, C]{node: e.To, g: g, f: g + heuristic(e.To)})
		}
	}
	return Result[N, C]{Expanded: expanded}, ErrNotFound
}

// reconstructPath follows parent links back to the start and reverses them.
func reconstructPath[N comparable, C Cost](best map[N]visit[N, C], current N) []N {
	path := []N{current}
	for {
		v := best[current]
		if !v.hasParent {
			break
		}
		current = v.parent
		path = append(path, current)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
