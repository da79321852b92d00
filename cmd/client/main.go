package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/kiryu-dev/penta/internal/domain"
	"github.com/kiryu-dev/penta/pkg/utils"
	"github.com/pkg/errors"
)

const none = "-"

func main() {
	host := flag.String("host", "localhost:8080", "server address")
	gameUuid := flag.String("game", "", "game to connect to, a new one is created when empty")
	player := flag.String("player", "", "player id, random when empty")
	flag.Parse()
	if *gameUuid == "" {
		id, err := createGame(*host)
		if err != nil {
			log.Fatal(err)
		}
		*gameUuid = id
	}
	if *player == "" {
		*player = uuid.NewString()[:8]
	}
	u := url.URL{Scheme: "ws", Host: *host, Path: "/game", RawQuery: domain.GameIdParam + "=" + *gameUuid}
	header := http.Header{}
	header.Set(domain.ClientUuidHeader, uuid.NewString())
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		log.Fatal("dial: " + err.Error())
	}
	defer func() {
		_ = conn.Close()
	}()
	fmt.Printf("game %s, player %s\n", *gameUuid, *player)
	c := newClient(conn, *player)
	go func() {
		if err := c.readUpdates(); err != nil {
			log.Fatal(err)
		}
	}()
	if err := c.handleCommands(); err != nil {
		log.Fatal(err)
	}
}

func createGame(host string) (string, error) {
	resp, err := http.Post("http://"+host+"/games", "application/json", nil)
	if err != nil {
		return "", errors.WithMessage(err, "create game")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	var v struct {
		GameUuid string `json:"gameId"`
	}
	if err := jsoniter.NewDecoder(resp.Body).Decode(&v); err != nil {
		return "", errors.WithMessage(err, "decode create game response")
	}
	return v.GameUuid, nil
}

type client struct {
	conn    *websocket.Conn
	player  string
	scanner *bufio.Scanner
	mu      *sync.Mutex
	view    domain.StateView
}

func newClient(conn *websocket.Conn, player string) *client {
	return &client{
		conn:    conn,
		player:  player,
		scanner: bufio.NewScanner(os.Stdin),
		mu:      &sync.Mutex{},
	}
}

func (c *client) readUpdates() error {
	for {
		msg := new(domain.Message)
		if err := c.conn.ReadJSON(msg); err != nil {
			return errors.WithMessage(err, "read json msg")
		}
		switch msg.Type {
		case domain.StateUpdate:
			v, err := utils.UnmarshalJson[domain.StateUpdatePayload](msg.Payload)
			if err != nil {
				return errors.WithMessage(err, "unmarshal json to 'StateUpdatePayload' type")
			}
			c.mu.Lock()
			c.view = v.State
			c.mu.Unlock()
			printState(v.State)
		case domain.ProtocolError:
			v, err := utils.UnmarshalJson[domain.ProtocolErrorPayload](msg.Payload)
			if err != nil {
				return errors.WithMessage(err, "unmarshal json to 'ProtocolErrorPayload' type")
			}
			fmt.Println("server rejected the message: " + v.Error)
		}
	}
}

func (c *client) handleCommands() error {
	for {
		fmt.Print("> ")
		if !c.scanner.Scan() {
			return c.scanner.Err()
		}
		args := strings.Fields(c.scanner.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "quit" {
			return nil
		}
		msg, err := c.command(args[0], args[1:])
		if err != nil {
			fmt.Println(err)
			continue
		}
		if err := c.conn.WriteJSON(msg); err != nil {
			return errors.WithMessage(err, "write json msg")
		}
	}
}

func (c *client) command(name string, args []string) (domain.Message, error) {
	if name == "clear" {
		return domain.Message{Type: domain.ClearIllegalMove}, nil
	}
	event, err := c.event(name, args)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		Type:    domain.SubmitEvent,
		Payload: domain.SubmitEventPayload{Event: domain.Notation{Event: event}},
	}, nil
}

func (c *client) event(name string, args []string) (domain.Event, error) {
	c.mu.Lock()
	view := c.view
	c.mu.Unlock()
	switch {
	case name == "join" && len(args) <= 1:
		figure := ""
		if len(args) == 1 {
			figure = args[0]
		}
		return domain.PlayerJoinEvent{Player: domain.PlayerState{ID: c.player, FigureID: figure}}, nil
	case name == "start" && len(args) == 0:
		return domain.InitGameEvent{}, nil
	case name == "move" && len(args) == 3:
		return domain.MovePlayerEvent{Player: c.player, Piece: args[0], From: args[1], To: args[2]}, nil
	case name == "swap" && len(args) == 4:
		return domain.SwapOwnPieceEvent{
			Player: c.player, Piece: args[0], OtherPiece: args[1], From: args[2], To: args[3],
		}, nil
	case name == "hostile" && len(args) == 4:
		return domain.SwapHostilePiecesEvent{
			Player:      c.player,
			OtherPlayer: owner(view, args[1]),
			Piece:       args[0],
			OtherPiece:  args[1],
			From:        args[2],
			To:          args[3],
		}, nil
	case name == "black" && (len(args) == 2 || len(args) == 3):
		return domain.SetBlackEvent{ID: args[0], To: args[1], From: optional(args, 2)}, nil
	case name == "grey" && (len(args) == 2 || len(args) == 3):
		return domain.SetGreyEvent{ID: args[0], To: args[1], From: optional(args, 2)}, nil
	case name == "selectgrey" && len(args) == 2:
		return domain.SelectGreyEvent{From: optional(args, 0), ID: optional(args, 1)}, nil
	case name == "select" && len(args) == 1:
		before := optional([]string{view.SelectedPlayerPiece}, 0)
		return domain.SelectPlayerPieceEvent{Before: before, ID: optional(args, 0)}, nil
	case name == "undo" && len(args) == 0:
		if len(view.History) == 0 {
			return nil, errors.New("nothing to undo")
		}
		last := view.History[len(view.History)-1]
		return domain.UndoEvent{Moves: []domain.Notation{last}}, nil
	default:
		return nil, errors.Errorf("unknown command '%s' with %d args, try one of: %s",
			name, len(args), "join [figure], start, move p f t, swap p o f t, hostile p o f t, "+
				"black id to [from], grey id to [from], selectgrey from|- id|-, select id|-, undo, clear, quit")
	}
}

func optional(args []string, i int) *string {
	if i >= len(args) || args[i] == "" || args[i] == none {
		return nil
	}
	return &args[i]
}

func owner(view domain.StateView, pieceID string) string {
	for _, piece := range view.Figures {
		if piece.ID == pieceID {
			return piece.PlayerID
		}
	}
	return ""
}

func printState(view domain.StateView) {
	fmt.Printf("\n=== %s, turn %d, current player %s ===\n", view.Phase, view.Turn, view.CurrentPlayer.ID)
	if view.Winner != "" {
		fmt.Println("winner: " + view.Winner)
	}
	for _, player := range view.Players {
		fmt.Printf("player %s scored %v\n", player.ID, view.ScoringColors[player.ID])
	}
	figures := make([]domain.Piece, len(view.Figures))
	copy(figures, view.Figures)
	sort.Slice(figures, func(i, j int) bool {
		return figures[i].ID < figures[j].ID
	})
	for _, piece := range figures {
		pos, ok := view.Positions[piece.ID]
		if !ok {
			pos = "off-board"
		}
		fmt.Printf("  %-4s %-6s %-7s %-10s %s\n", piece.ID, piece.Kind, piece.Color, piece.PlayerID, pos)
	}
	for _, s := range []struct{ name, id string }{
		{"selected player piece", view.SelectedPlayerPiece},
		{"black blocker to place", view.SelectedBlackPiece},
		{"gray blocker to place", view.SelectedGrayPiece},
	} {
		if s.id != "" {
			fmt.Printf("%s: %s\n", s.name, s.id)
		}
	}
	if view.SelectingGrayPiece {
		fmt.Println("select a gray blocker to place")
	}
	if view.IllegalMove != nil {
		fmt.Println("illegal move: " + view.IllegalMove.Reason)
	}
	fmt.Print("> ")
}
