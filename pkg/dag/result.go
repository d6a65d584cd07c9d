package dag

// Batch is a group of vertices placed at the same level of an ordering.
// Vertices inside a batch keep the order in which the sort emitted them.
type Batch[V comparable] []V

// Result is the ordered list of batches produced by a sort. It is an
// independent snapshot: mutating the graph afterwards does not affect it.
type Result[V comparable] []Batch[V]

// Flatten concatenates all batches into a single ordering.
func (r Result[V]) Flatten() []V {
	out := make([]V, 0, r.Len())
	for _, b := range r {
		out = append(out, b...)
	}
	return out
}

// Len returns the total number of vertices across all batches.
func (r Result[V]) Len() int {
	n := 0
	for _, b := range r {
		n += len(b)
	}
	return n
}

// BatchIndex maps each vertex to the index of the batch containing it.
func (r Result[V]) BatchIndex() map[V]int {
	idx := make(map[V]int, r.Len())
	for i, b := range r {
		for _, v := range b {
			idx[v] = i
		}
	}
	return idx
}
