package game

import (
	"github.com/kiryu-dev/penta/internal/domain"
)

// CanMove reports whether a piece on from can reach to. The search walks over
// free fields only; whether to itself is occupied is up to the caller.
func CanMove(board *domain.Board, positions map[string]string, from, to *domain.Field) bool {
	occupied := make(map[string]struct{}, len(positions))
	for _, fieldID := range positions {
		if f, ok := board.Field(fieldID); ok {
			occupied[f.ID()] = struct{}{}
		}
	}
	visited := map[*domain.Field]struct{}{from: {}}
	queue := []*domain.Field{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range current.Connected() {
			if next == to {
				return true
			}
			if _, ok := visited[next]; ok {
				continue
			}
			visited[next] = struct{}{}
			if _, ok := occupied[next.ID()]; ok {
				continue
			}
			queue = append(queue, next)
		}
	}
	return false
}
