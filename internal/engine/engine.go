package engine

import (
	"errors"
	"fmt"
)

var ErrNotHost = errors.New("only the host can start the game")
var ErrNotEnoughPlayers = errors.New("need at least 2 players")
var ErrAlreadyStarted = errors.New("game already started")
var ErrGameNotRunning = errors.New("game not running")
var ErrNotYourTurn = errors.New("not your turn")
var ErrInvalidBid = errors.New("invalid bid")
var ErrDuplicateBid = errors.New("bid already made this round")
var ErrNoActiveBid = errors.New("no bid to call")
var ErrUnsupportedCommand = errors.New("unsupported command")

type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseBidding  Phase = "bidding"
	PhaseFinished Phase = "finished"
)

// Player entries are append-only; elimination and disconnects flip Alive
// instead of removing the entry, so turn indexes never shift.
type Player struct {
	ID       string
	Name     string
	HandSize int
	Hand     []int
	Alive    bool
}

type Game struct {
	Phase           Phase
	Players         []Player
	TurnIndex       int
	HostID          string
	CurrentBid      *Bid
	RoundBids       []Bid
	DefaultHandSize int
}

func NewGame(defaultHandSize int) *Game {
	if defaultHandSize < 1 {
		defaultHandSize = 5
	}
	return &Game{
		Phase:           PhaseLobby,
		DefaultHandSize: defaultHandSize,
	}
}

type CommandType string

const (
	CmdJoin       CommandType = "Join"
	CmdStart      CommandType = "Start"
	CmdPlaceBid   CommandType = "PlaceBid"
	CmdCallBid    CommandType = "CallBid"
	CmdDisconnect CommandType = "Disconnect"
)

type Command struct {
	Type     CommandType
	PlayerID string
	Name     string // Join only
	Count    int    // PlaceBid only
	Face     int    // PlaceBid only
}

type EventType string

const (
	EvtLobbyUpdate   EventType = "LobbyUpdate"
	EvtHandDealt     EventType = "HandDealt"
	EvtGameStarted   EventType = "GameStarted"
	EvtBidPlaced     EventType = "BidPlaced"
	EvtTurnAdvanced  EventType = "TurnAdvanced"
	EvtRoundResolved EventType = "RoundResolved"
	EvtGameFinished  EventType = "GameFinished"
)

// Event is the notification half of an applied command. To names the
// player it must be delivered to; an empty To means the whole room.
type Event struct {
	Type       EventType
	To         string
	Hand       []int
	Bid        Bid
	NextTurnID string
	WinnerID   string
	Resolution *Resolution
}

// Apply runs one command against the game. Validation happens in full
// before any mutation: on error the game is unchanged.
func (g *Game) Apply(cmd Command) ([]Event, error) {
	switch cmd.Type {
	case CmdJoin:
		return g.join(cmd.PlayerID, cmd.Name)
	case CmdStart:
		return g.start(cmd.PlayerID)
	case CmdPlaceBid:
		return g.placeBid(cmd.PlayerID, Bid{Count: cmd.Count, Face: cmd.Face, BidderID: cmd.PlayerID})
	case CmdCallBid:
		return g.callBid(cmd.PlayerID)
	case CmdDisconnect:
		return g.disconnect(cmd.PlayerID)
	default:
		return nil, ErrUnsupportedCommand
	}
}

func (g *Game) join(playerID, name string) ([]Event, error) {
	if g.Phase != PhaseLobby {
		return nil, ErrAlreadyStarted
	}
	if name == "" {
		name = fmt.Sprintf("Player%d", len(g.Players)+1)
	}
	g.Players = append(g.Players, Player{
		ID:       playerID,
		Name:     name,
		HandSize: g.DefaultHandSize,
		Alive:    true,
	})
	if g.HostID == "" {
		g.HostID = playerID
	}
	return []Event{{Type: EvtLobbyUpdate}}, nil
}

func (g *Game) start(requesterID string) ([]Event, error) {
	if g.Phase != PhaseLobby {
		return nil, ErrAlreadyStarted
	}
	if requesterID != g.HostID {
		return nil, ErrNotHost
	}
	if g.aliveCount() < 2 {
		return nil, ErrNotEnoughPlayers
	}

	events := make([]Event, 0, g.aliveCount()+1)
	for i := range g.Players {
		p := &g.Players[i]
		if !p.Alive {
			continue
		}
		p.Hand = rollDice(p.HandSize)
		events = append(events, Event{Type: EvtHandDealt, To: p.ID, Hand: p.Hand})
	}

	g.Phase = PhaseBidding
	g.TurnIndex = nextAlive(g.Players, -1)
	g.CurrentBid = nil
	g.RoundBids = nil

	events = append(events, Event{Type: EvtGameStarted, NextTurnID: g.Players[g.TurnIndex].ID})
	return events, nil
}

func (g *Game) placeBid(playerID string, bid Bid) ([]Event, error) {
	if g.Phase != PhaseBidding {
		return nil, ErrGameNotRunning
	}
	if g.Players[g.TurnIndex].ID != playerID {
		return nil, ErrNotYourTurn
	}
	if bid.Count < 1 || bid.Face < 1 || bid.Face > 6 {
		return nil, ErrInvalidBid
	}
	// The duplicate check runs before the comparator so a repeat of the
	// current bid reports as a duplicate, not merely a non-raise.
	for _, prev := range g.RoundBids {
		if prev.Count == bid.Count && prev.Face == bid.Face {
			return nil, ErrDuplicateBid
		}
	}
	if g.CurrentBid != nil && !bid.Beats(*g.CurrentBid) {
		return nil, ErrInvalidBid
	}

	g.CurrentBid = &bid
	g.RoundBids = append(g.RoundBids, bid)
	g.TurnIndex = nextAlive(g.Players, g.TurnIndex)

	return []Event{{
		Type:       EvtBidPlaced,
		Bid:        bid,
		NextTurnID: g.Players[g.TurnIndex].ID,
	}}, nil
}

func (g *Game) callBid(playerID string) ([]Event, error) {
	if g.Phase != PhaseBidding {
		return nil, ErrGameNotRunning
	}
	if g.Players[g.TurnIndex].ID != playerID {
		return nil, ErrNotYourTurn
	}
	if g.CurrentBid == nil {
		return nil, ErrNoActiveBid
	}
	return g.resolve(playerID)
}

func (g *Game) disconnect(playerID string) ([]Event, error) {
	i := g.indexOf(playerID)
	if i < 0 {
		return nil, nil
	}

	wasAlive := g.Players[i].Alive
	g.Players[i].Alive = false

	if g.HostID == playerID {
		g.HostID = ""
		if j := nextAlive(g.Players, i); g.Players[j].Alive {
			g.HostID = g.Players[j].ID
		}
	}

	events := []Event{{Type: EvtLobbyUpdate}}

	if g.Phase != PhaseBidding || !wasAlive {
		return events, nil
	}

	if g.aliveCount() == 1 {
		g.Phase = PhaseFinished
		winner := g.Players[nextAlive(g.Players, i)]
		events = append(events, Event{Type: EvtGameFinished, WinnerID: winner.ID})
		return events, nil
	}

	if g.TurnIndex == i {
		g.TurnIndex = nextAlive(g.Players, i)
		events = append(events, Event{Type: EvtTurnAdvanced, NextTurnID: g.Players[g.TurnIndex].ID})
	}
	return events, nil
}

func (g *Game) aliveCount() int {
	n := 0
	for _, p := range g.Players {
		if p.Alive {
			n++
		}
	}
	return n
}

func (g *Game) indexOf(playerID string) int {
	for i, p := range g.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// PlayerByID returns the player entry, dead or alive.
func (g *Game) PlayerByID(playerID string) (Player, bool) {
	if i := g.indexOf(playerID); i >= 0 {
		return g.Players[i], true
	}
	return Player{}, false
}

// AliveInOrder is the turn rotation as of now: alive players in join order.
func (g *Game) AliveInOrder() []Player {
	out := make([]Player, 0, len(g.Players))
	for _, p := range g.Players {
		if p.Alive {
			out = append(out, p)
		}
	}
	return out
}
