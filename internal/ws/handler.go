package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"example.com/fluff/internal/engine"
	"example.com/fluff/internal/hub"
	"example.com/fluff/internal/room"
	"example.com/fluff/internal/types"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const writeTimeout = 3 * time.Second

// Handler binds one connection to one room, resolved at upgrade time.
// The connection ID doubles as the player ID, like a socket id would.
func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("room")
		if code == "" {
			http.Error(w, "missing room", http.StatusBadRequest)
			return
		}

		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
		rm := <-reply
		if rm == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		clog := log.With(zap.String("room", code), zap.String("client", clientID))

		out := make(chan types.ServerMessage, 8)
		joined := false
		defer func() {
			if joined {
				rm.Inbox() <- room.Leave{ClientID: clientID}
			}
		}()

		// Writer goroutine: drains the room's outbox for this client.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for msg := range out {
				payload, _ := json.Marshal(msg)
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop. Each op is acked before the next frame is read,
		// so one connection's ops reach the room in submission order.
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeAck(r.Context(), conn, errors.New("bad json"))
				continue
			}

			if cm.Type == "join" {
				if joined {
					writeAck(r.Context(), conn, errors.New("already joined"))
					continue
				}
				jr := make(chan error, 1)
				rm.Inbox() <- room.Join{ClientID: clientID, Name: cm.Name, Outbox: out, Reply: jr}
				if err := <-jr; err != nil {
					writeAck(r.Context(), conn, err)
					continue
				}
				joined = true
				clog.Info("player joined")
				writeAck(r.Context(), conn, nil)
				continue
			}

			if !joined {
				writeAck(r.Context(), conn, errors.New("join first"))
				continue
			}

			cmd, ok := toCommand(cm, clientID)
			if !ok {
				writeAck(r.Context(), conn, errors.New("unknown type"))
				continue
			}

			ar := make(chan error, 1)
			rm.Inbox() <- room.FromClient{ClientID: clientID, Cmd: cmd, Reply: ar}
			writeAck(r.Context(), conn, <-ar)
		}
	}
}

func toCommand(m types.ClientMessage, playerID string) (engine.Command, bool) {
	switch m.Type {
	case "start":
		return engine.Command{Type: engine.CmdStart, PlayerID: playerID}, true
	case "bid":
		return engine.Command{Type: engine.CmdPlaceBid, PlayerID: playerID, Count: m.Count, Face: m.Face}, true
	case "call":
		return engine.Command{Type: engine.CmdCallBid, PlayerID: playerID}, true
	default:
		return engine.Command{}, false
	}
}

// writeAck reports the outcome of one client op on the same connection.
// Rejections are request-local: nothing else in the room hears them.
func writeAck(ctx context.Context, conn *websocket.Conn, opErr error) {
	ack := types.AckPayload{OK: opErr == nil}
	msgType := "ack"
	if opErr != nil {
		msgType = "error"
		ack.Error = opErr.Error()
	}
	payload, _ := json.Marshal(types.Envelope(msgType, ack))
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}
