package room

import (
	"context"

	"example.com/fluff/internal/engine"
	"example.com/fluff/internal/types"
	"go.uber.org/zap"
)

type Msg interface{ isRoomMsg() }

// Join registers a connection and seats the player in one step; the
// outbox is where this client receives its notifications.
type Join struct {
	ClientID string
	Name     string
	Outbox   chan types.ServerMessage
	Reply    chan error
}

func (Join) isRoomMsg() {}

type Leave struct{ ClientID string }

func (Leave) isRoomMsg() {}

type FromClient struct {
	ClientID string
	Cmd      engine.Command
	Reply    chan error
}

func (FromClient) isRoomMsg() {}

type GetView struct {
	Reply chan View
}

func (GetView) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

// View reflects room internals without data races; test-only.
type View struct {
	NumClients int
	Phase      engine.Phase
	HostID     string
	Players    []engine.Player
	TurnID     string
}

// Room serializes every operation against one game: a single goroutine
// owns the engine state and the client table, so commands apply in
// arrival order and nothing observes a half-applied mutation.
type Room struct {
	code    string
	inbox   chan Msg
	game    *engine.Game
	clients map[string]chan types.ServerMessage
	onEmpty func()
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

// New starts the room goroutine. onEmpty runs (once) after the last
// client leaves, just before the loop exits; the hub uses it to drop the
// room from the registry.
func New(parent context.Context, code string, game *engine.Game, onEmpty func(), log *zap.Logger) *Room {
	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		code:    code,
		inbox:   make(chan Msg, 64),
		game:    game,
		clients: make(map[string]chan types.ServerMessage),
		onEmpty: onEmpty,
		log:     log.With(zap.String("room", code)),
		ctx:     ctx,
		cancel:  cancel,
	}
	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.clients[msg.ClientID] = msg.Outbox
				events, err := r.game.Apply(engine.Command{
					Type:     engine.CmdJoin,
					PlayerID: msg.ClientID,
					Name:     msg.Name,
				})
				if err != nil {
					delete(r.clients, msg.ClientID)
					msg.Reply <- err
					break
				}
				msg.Reply <- nil
				r.dispatch(events)

			case Leave:
				// The client may already be gone (dropped as slow), but
				// the player still has to be taken out of the game.
				_, had := r.clients[msg.ClientID]
				delete(r.clients, msg.ClientID)
				events, _ := r.game.Apply(engine.Command{
					Type:     engine.CmdDisconnect,
					PlayerID: msg.ClientID,
				})
				r.dispatch(events)
				if had && len(r.clients) == 0 {
					if r.onEmpty != nil {
						r.onEmpty()
					}
					r.shutdown()
					return
				}

			case FromClient:
				events, err := r.game.Apply(msg.Cmd)
				if msg.Reply != nil {
					msg.Reply <- err
				}
				if err != nil {
					break
				}
				r.dispatch(events)

			case GetView:
				turnID := ""
				if r.game.Phase == engine.PhaseBidding {
					turnID = r.game.Players[r.game.TurnIndex].ID
				}
				msg.Reply <- View{
					NumClients: len(r.clients),
					Phase:      r.game.Phase,
					HostID:     r.game.HostID,
					Players:    append([]engine.Player(nil), r.game.Players...),
					TurnID:     turnID,
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) shutdown() {
	for id, ch := range r.clients {
		close(ch)
		delete(r.clients, id)
	}
	r.cancel()
}

// dispatch fans applied events out to connections. Events with a target
// go only to that client's outbox; hands in particular must never touch
// the broadcast path.
func (r *Room) dispatch(events []engine.Event) {
	for _, ev := range events {
		msg, ok := r.toWire(ev)
		if !ok {
			continue
		}
		if ev.To != "" {
			r.sendTo(ev.To, msg)
			continue
		}
		r.broadcast(msg)
	}
}

func (r *Room) toWire(ev engine.Event) (types.ServerMessage, bool) {
	switch ev.Type {
	case engine.EvtLobbyUpdate:
		return types.Envelope("lobby_update", types.LobbyUpdatePayload{
			Players: r.playerInfos(r.game.Players),
			HostID:  r.game.HostID,
		}), true

	case engine.EvtHandDealt:
		return types.Envelope("your_dice", types.PrivateHandPayload{Dice: ev.Hand}), true

	case engine.EvtGameStarted:
		return types.Envelope("game_started", types.GameStartedPayload{
			Order:       r.playerInfos(r.game.AliveInOrder()),
			CurrentTurn: ev.NextTurnID,
		}), true

	case engine.EvtBidPlaced:
		bidder, _ := r.game.PlayerByID(ev.Bid.BidderID)
		return types.Envelope("new_bid", types.NewBidPayload{
			Count:      ev.Bid.Count,
			Face:       ev.Bid.Face,
			BidderID:   ev.Bid.BidderID,
			BidderName: bidder.Name,
			NextTurn:   ev.NextTurnID,
		}), true

	case engine.EvtTurnAdvanced:
		return types.Envelope("turn_update", types.TurnUpdatePayload{
			CurrentTurn: ev.NextTurnID,
		}), true

	case engine.EvtRoundResolved:
		res := ev.Resolution
		loser, _ := r.game.PlayerByID(res.LoserID)
		payload := types.RoundResultPayload{
			Reveal:      res.Revealed,
			ActualCount: res.ActualCount,
			Bid:         types.BidInfo{Count: res.Bid.Count, Face: res.Bid.Face},
			LoserID:     res.LoserID,
			LoserName:   loser.Name,
			ResultText:  res.ResultText,
			Players:     r.playerInfos(r.game.Players),
			NextTurn:    res.NextTurnID,
		}
		if res.WinnerID != "" {
			winner, _ := r.game.PlayerByID(res.WinnerID)
			payload.Winner = &types.PlayerInfo{
				ID:        winner.ID,
				Name:      winner.Name,
				DiceCount: winner.HandSize,
				Alive:     winner.Alive,
			}
		}
		return types.Envelope("round_result", payload), true

	case engine.EvtGameFinished:
		winner, _ := r.game.PlayerByID(ev.WinnerID)
		return types.Envelope("game_over", types.GameOverPayload{
			WinnerID:   ev.WinnerID,
			WinnerName: winner.Name,
		}), true
	}
	return types.ServerMessage{}, false
}

func (r *Room) playerInfos(players []engine.Player) []types.PlayerInfo {
	infos := make([]types.PlayerInfo, 0, len(players))
	for _, p := range players {
		infos = append(infos, types.PlayerInfo{
			ID:        p.ID,
			Name:      p.Name,
			DiceCount: p.HandSize,
			Alive:     p.Alive,
		})
	}
	return infos
}

func (r *Room) sendTo(clientID string, msg types.ServerMessage) {
	ch, ok := r.clients[clientID]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		// Client is slow/full - drop them.
		r.log.Warn("dropping slow client", zap.String("client", clientID))
		close(ch)
		delete(r.clients, clientID)
	}
}

func (r *Room) broadcast(msg types.ServerMessage) {
	for id := range r.clients {
		r.sendTo(id, msg)
	}
}
