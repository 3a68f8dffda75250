package repo

import "github.com/kiprasmel/sapling/pkg/changeset"

// topoSort orders the batch so that every changeset follows its in-batch
// parents. Parents outside the batch do not constrain the order. The input
// order breaks ties, so the result is deterministic.
func topoSort(batch []*changeset.Changeset, ids []changeset.ID) ([]int, error) {
	member := make(map[changeset.ID]int, len(ids))
	for i, id := range ids {
		member[id] = i
	}

	// indegree counts in-batch parents; children collects forward edges.
	indegree := make([]int, len(batch))
	children := make([][]int, len(batch))
	for i, cs := range batch {
		for _, p := range cs.Parents {
			if j, ok := member[p]; ok {
				indegree[i]++
				children[j] = append(children[j], i)
			}
		}
	}

	queue := make([]int, 0, len(batch))
	for i := range batch {
		if indegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]int, 0, len(batch))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, i)
		for _, c := range children[i] {
			indegree[c]--
			if indegree[c] == 0 {
				queue = append(queue, c)
			}
		}
	}

	if len(order) != len(batch) {
		for i, d := range indegree {
			if d > 0 {
				return nil, &CycleError{ID: ids[i]}
			}
		}
	}
	return order, nil
}
