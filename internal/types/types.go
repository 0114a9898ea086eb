package types

import "encoding/json"

// Client -> server. One flat shape; unused fields stay zero.
type ClientMessage struct {
	Type  string `json:"type"` // "join" | "start" | "bid" | "call"
	Name  string `json:"name,omitempty"`
	Count int    `json:"count,omitempty"`
	Face  int    `json:"face,omitempty"`
}

// Server -> client envelope: {"type":"...","payload":{...}}.
type ServerMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type PlayerInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	DiceCount int    `json:"dice_count"`
	Alive     bool   `json:"alive"`
}

type AckPayload struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type LobbyUpdatePayload struct {
	Players []PlayerInfo `json:"players"`
	HostID  string       `json:"host_id"`
}

type GameStartedPayload struct {
	Order       []PlayerInfo `json:"order"`
	CurrentTurn string       `json:"current_turn"`
}

// Delivered only to the owning connection.
type PrivateHandPayload struct {
	Dice []int `json:"dice"`
}

type NewBidPayload struct {
	Count      int    `json:"count"`
	Face       int    `json:"face"`
	BidderID   string `json:"bidder_id"`
	BidderName string `json:"bidder_name"`
	NextTurn   string `json:"next_turn"`
}

type TurnUpdatePayload struct {
	CurrentTurn string `json:"current_turn"`
}

type BidInfo struct {
	Count int `json:"count"`
	Face  int `json:"face"`
}

type RoundResultPayload struct {
	Reveal      map[string][]int `json:"reveal"`
	ActualCount int              `json:"actual_count"`
	Bid         BidInfo          `json:"bid"`
	LoserID     string           `json:"loser_id"`
	LoserName   string           `json:"loser_name"`
	ResultText  string           `json:"result_text"`
	Players     []PlayerInfo     `json:"players"`
	NextTurn    string           `json:"next_turn,omitempty"`
	Winner      *PlayerInfo      `json:"winner,omitempty"`
}

type GameOverPayload struct {
	WinnerID   string `json:"winner_id"`
	WinnerName string `json:"winner_name"`
}

func MustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

func Envelope(msgType string, payload any) ServerMessage {
	return ServerMessage{Type: msgType, Payload: MustJSON(payload)}
}
