package weiqi

import (
	"weixiang/pkg/core"
	"weixiang/pkg/grid"
)

// ComputeTerritory flood-fills every maximal empty region and credits its
// size to the single color bordering it. Regions bordered by both colors, or
// by no stone at all, are dame. Nothing is cached between calls because a
// capture can change the borders of any region.
func (b *Board) ComputeTerritory() core.Tally {
	var t core.Tally
	visited := make([]bool, Size*Size)
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if visited[row*Size+col] || b.cells.Occupied(row, col) {
				continue
			}
			size, owner, ok := b.region(row, col, visited)
			if ok {
				t.Add(owner, size)
			}
		}
	}
	return t
}

func (b *Board) region(row, col int, visited []bool) (int, core.Color, bool) {
	visited[row*Size+col] = true
	queue := []grid.Point{{Row: row, Col: col}}
	var borders [2]bool
	size := 0
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		size++
		for _, n := range b.cells.Neighbors(p) {
			if s, ok := b.cells.At(n.Row, n.Col); ok {
				borders[s.Color] = true
				continue
			}
			if !visited[n.Row*Size+n.Col] {
				visited[n.Row*Size+n.Col] = true
				queue = append(queue, n)
			}
		}
	}
	switch {
	case borders[core.Black] && !borders[core.White]:
		return size, core.Black, true
	case borders[core.White] && !borders[core.Black]:
		return size, core.White, true
	}
	return size, 0, false
}
