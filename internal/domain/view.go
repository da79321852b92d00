package domain

// StateView is the form in which a game state is sent to viewers.
type StateView struct {
	Players             []PlayerState       `json:"players"`
	CurrentPlayer       PlayerState         `json:"currentPlayer"`
	Turn                int                 `json:"turn"`
	Phase               string              `json:"phase"`
	Winner              string              `json:"winner,omitempty"`
	Figures             []Piece             `json:"figures"`
	Positions           map[string]string   `json:"positions"`
	ScoringColors       map[string][]string `json:"scoringColors"`
	History             []Notation          `json:"history"`
	SelectedPlayerPiece string              `json:"selectedPlayerPiece,omitempty"`
	SelectedBlackPiece  string              `json:"selectedBlackPiece,omitempty"`
	SelectedGrayPiece   string              `json:"selectedGrayPiece,omitempty"`
	SelectingGrayPiece  bool                `json:"selectingGrayPiece"`
	IllegalMove         *IllegalMoveView    `json:"illegalMove,omitempty"`
}

type IllegalMoveView struct {
	Reason string   `json:"reason"`
	Move   Notation `json:"move"`
}

func NewStateView(s GameState) StateView {
	view := StateView{
		Players:             s.Players,
		CurrentPlayer:       s.CurrentPlayer,
		Turn:                s.Turn,
		Phase:               s.Phase().String(),
		Winner:              s.Winner,
		Figures:             s.Figures,
		Positions:           s.Positions,
		ScoringColors:       make(map[string][]string, len(s.ScoringColors)),
		History:             s.Notations(),
		SelectedPlayerPiece: s.SelectedPlayerPiece,
		SelectedBlackPiece:  s.SelectedBlackPiece,
		SelectedGrayPiece:   s.SelectedGrayPiece,
		SelectingGrayPiece:  s.SelectingGrayPiece,
	}
	// colors go out by name, a []Color would be encoded as base64
	for playerID, colors := range s.ScoringColors {
		names := make([]string, 0, len(colors))
		for _, c := range colors {
			names = append(names, c.String())
		}
		view.ScoringColors[playerID] = names
	}
	if s.IllegalMove != nil {
		view.IllegalMove = &IllegalMoveView{Reason: s.IllegalMove.Reason}
		if s.IllegalMove.Move != nil {
			view.IllegalMove.Move = Notation{Event: s.IllegalMove.Move.Notation()}
		}
	}
	return view
}
