package astar

type queueItem[N comparable, C Cost] struct {
	node N
	g    C // cost so far
	f    C // g + heuristic
}

// priorityQueue orders by f, then by lower g. It implements heap.Interface.
type priorityQueue[N comparable, C Cost] []queueItem[N, C]

func (q priorityQueue[N, C]) Len() int { return len(q) }
func (q priorityQueue[N, C]) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].g < q[j].g
}
func (q priorityQueue[N, C]) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *priorityQueue[N, C]) Push(x any) { *q = append(*q, x.(queueItem[N, C])) }
func (q *priorityQueue[N, C]) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
