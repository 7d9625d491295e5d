package motionlink

import "github.com/san-kum/gearsim/internal/joint"

// Graph is the read side of the link graph: each node has at most one
// outgoing edge.
type Graph interface {
	Next(h joint.Handle) (joint.Handle, bool)
	Len() int
}

// CycleGuard checks whether a proposed edge would close a cycle.
type CycleGuard struct{}

// Check walks existing edges from target and reports whether source is
// reached. The walk is bounded by the node count, so it terminates even when
// the graph already holds a cycle that source is not part of. The returned
// path starts and ends at source.
func (CycleGuard) Check(g Graph, source, target joint.Handle) ([]joint.Handle, bool) {
	path := []joint.Handle{source}
	cur := target
	for steps := 0; steps <= g.Len(); steps++ {
		path = append(path, cur)
		if cur == source {
			return path, true
		}
		next, ok := g.Next(cur)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// Cycles lists every cycle in g reachable from nodes, each rotated to start
// at its smallest handle. nodes must be sorted for the result to be stable.
func (CycleGuard) Cycles(g Graph, nodes []joint.Handle) [][]joint.Handle {
	const (
		unseen = iota
		onPath
		done
	)
	state := make(map[joint.Handle]int, len(nodes))
	var cycles [][]joint.Handle

	for _, start := range nodes {
		if state[start] != unseen {
			continue
		}
		var path []joint.Handle
		cur := start
		for {
			if s := state[cur]; s == onPath {
				cycles = append(cycles, rotateMin(cycleFrom(path, cur)))
				break
			} else if s == done {
				break
			}
			state[cur] = onPath
			path = append(path, cur)
			next, ok := g.Next(cur)
			if !ok {
				break
			}
			cur = next
		}
		for _, h := range path {
			state[h] = done
		}
	}
	return cycles
}

func cycleFrom(path []joint.Handle, at joint.Handle) []joint.Handle {
	for i, h := range path {
		if h == at {
			out := make([]joint.Handle, len(path)-i)
			copy(out, path[i:])
			return out
		}
	}
	return nil
}

func rotateMin(c []joint.Handle) []joint.Handle {
	if len(c) == 0 {
		return c
	}
	m := 0
	for i := range c {
		if c[i].Less(c[m]) {
			m = i
		}
	}
	return append(c[m:len(c):len(c)], c[:m]...)
}
