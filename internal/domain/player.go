package domain

// PlayerState is created when a player joins and never changes afterwards.
type PlayerState struct {
	ID       string `json:"id"`
	FigureID string `json:"figureId"`
}
