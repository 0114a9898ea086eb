package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"

	"example.com/fluff/internal/hub"
	"example.com/fluff/internal/notify"
	"example.com/fluff/internal/room"
	"go.uber.org/zap"
)

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

type createRoomRequest struct {
	HandSize int `json:"hand_size"`
}

type createRoomResponse struct {
	RoomID string `json:"room_id"`
	Link   string `json:"link"`
}

// CreateRoom allocates a room with a fresh six-char code and returns a
// shareable join link. The code loop retries on registry collisions.
func CreateRoom(h *hub.Hub, wh *notify.Webhook, defaultHandSize int, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRoomRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req) // empty body is fine
		}
		handSize := req.HandSize
		if handSize < 1 {
			handSize = defaultHandSize
		}

		var created *room.Room
		var code string
		for created == nil {
			c, err := GenerateCode()
			if err != nil {
				http.Error(w, "failed to generate code", http.StatusInternalServerError)
				return
			}
			reply := make(chan *room.Room, 1)
			h.Inbox() <- hub.CreateRoom{Code: c, HandSize: handSize, Reply: reply}
			if rm := <-reply; rm != nil {
				created = rm
				code = c
				break
			}
			log.Warn("collision on room code, regenerating", zap.String("code", c))
		}

		link := joinLink(r, code)
		if wh != nil {
			go wh.Announce(code, link)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(createRoomResponse{RoomID: code, Link: link})
	}
}

func joinLink(r *http.Request, code string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/?game=%s", scheme, r.Host, code)
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
