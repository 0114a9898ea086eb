package hub

import (
	"context"

	"example.com/fluff/internal/engine"
	"example.com/fluff/internal/room"
	"go.uber.org/zap"
)

type HubMsg interface{ isHubMsg() }

// CreateRoom allocates a fresh room under Code. Replies nil if the code
// is already taken.
type CreateRoom struct {
	Code     string
	HandSize int
	Reply    chan *room.Room
}

type GetRoom struct {
	Code  string
	Reply chan *room.Room // nil if absent
}

type RemoveRoom struct {
	Code string
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

// Hub owns the room table; the only mutable global in the process. Every
// lookup and mutation goes through the inbox, so rooms are created and
// destroyed in a single goroutine.
type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*room.Room
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*room.Room),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				if h.rooms[msg.Code] != nil {
					msg.Reply <- nil
					break
				}
				code := msg.Code
				rm := room.New(h.ctx, code, engine.NewGame(msg.HandSize), func() {
					h.inbox <- RemoveRoom{Code: code}
				}, h.log)
				h.rooms[code] = rm
				h.log.Info("room created", zap.String("room", code))
				msg.Reply <- rm

			case GetRoom:
				msg.Reply <- h.rooms[msg.Code] // May be nil

			case RemoveRoom:
				if h.rooms[msg.Code] != nil {
					h.log.Info("room removed", zap.String("room", msg.Code))
				}
				delete(h.rooms, msg.Code)

			case ShutdownHub:
				for _, rm := range h.rooms {
					rm.Inbox() <- room.Shutdown{}
				}
				clear(h.rooms)
				h.cancel()
			}
		}
	}
}
