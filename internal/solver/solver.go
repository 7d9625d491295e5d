// Package solver implements a projected Gauss-Seidel velocity solver.
//
// Constraints are scalar rows J·v = rhs with an accumulated impulse clamped to
// per-row bounds. Joint locks and motion links are bilateral (unbounded);
// motors are soft rows, optionally capped at their maximum force times the
// step length. All rows
// of an island are iterated together in assembly order, which keeps results
// reproducible from run to run.
package solver

import (
	"sort"

	"github.com/san-kum/gearsim/internal/body"
)

// Assembler collects rows during the constraint-building phase of a step.
type Assembler interface {
	Add(r Row)
}

// Batch is the default Assembler: rows in the order they were added.
type Batch struct {
	rows []Row
}

func (b *Batch) Add(r Row)   { b.rows = append(b.rows, r) }
func (b *Batch) Rows() []Row { return b.rows }
func (b *Batch) Len() int    { return len(b.rows) }
func (b *Batch) Reset()      { b.rows = b.rows[:0] }

type Config struct {
	Iterations int
}

func DefaultConfig() Config {
	return Config{Iterations: 16}
}

// SolveIsland runs cfg.Iterations sweeps over rows[idx...] in index order.
func SolveIsland(rows []Row, idx []int, cfg Config) {
	for _, i := range idx {
		rows[i].prepare()
	}
	for it := 0; it < cfg.Iterations; it++ {
		for _, i := range idx {
			rows[i].solve()
		}
	}
}

// Solve treats every row as one island.
func Solve(rows []Row, cfg Config) {
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	SolveIsland(rows, idx, cfg)
}

// Islands partitions rows into groups that share no dynamic body, counting
// bodies a row only reads. Rows that push no dynamic body are dropped.
// Islands are ordered by their first row and keep rows in assembly order.
func Islands(rows []Row) [][]int {
	uf := newUnionFind()
	for i := range rows {
		r := &rows[i]
		if len(r.J) == 0 {
			continue
		}
		first := uf.find(r.J[0].Body)
		r.Bodies(func(b *body.Body) {
			uf.union(first, uf.find(b))
		})
	}

	groups := make(map[int][]int)
	for i, r := range rows {
		if len(r.J) == 0 {
			continue
		}
		root := uf.find(r.J[0].Body)
		groups[root] = append(groups[root], i)
	}

	islands := make([][]int, 0, len(groups))
	for _, g := range groups {
		islands = append(islands, g)
	}
	sort.Slice(islands, func(i, j int) bool { return islands[i][0] < islands[j][0] })
	return islands
}
