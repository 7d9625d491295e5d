package solver

import "github.com/san-kum/gearsim/internal/body"

type unionFind struct {
	ids    map[*body.Body]int
	parent []int
}

func newUnionFind() *unionFind {
	return &unionFind{ids: make(map[*body.Body]int)}
}

func (u *unionFind) find(b *body.Body) int {
	id, ok := u.ids[b]
	if !ok {
		id = len(u.parent)
		u.ids[b] = id
		u.parent = append(u.parent, id)
	}
	return u.root(id)
}

func (u *unionFind) root(id int) int {
	for u.parent[id] != id {
		u.parent[id] = u.parent[u.parent[id]]
		id = u.parent[id]
	}
	return id
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.root(a), u.root(b)
	if ra == rb {
		return
	}
	if ra < rb {
		u.parent[rb] = ra
	} else {
		u.parent[ra] = rb
	}
}
