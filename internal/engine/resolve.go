package engine

import "fmt"

// Resolution is the full outcome of a called bid, revealed to the room.
type Resolution struct {
	Bid         Bid
	CallerID    string
	ActualCount int
	BidStood    bool
	LoserID     string
	Revealed    map[string][]int
	ResultText  string
	NextTurnID  string // empty once the game is decided
	WinnerID    string
}

// resolve settles the current bid against the caller. The caller holds
// the turn; the bidder is whoever placed CurrentBid.
func (g *Game) resolve(callerID string) ([]Event, error) {
	bid := *g.CurrentBid
	actual := g.actualCount(bid.Face)
	stood := actual >= bid.Count

	caller, _ := g.PlayerByID(callerID)
	bidder, _ := g.PlayerByID(bid.BidderID)

	loserID := bid.BidderID
	text := fmt.Sprintf("%s's bid failed (%d < %d). %s loses a die.",
		bidder.Name, actual, bid.Count, bidder.Name)
	if stood {
		loserID = callerID
		text = fmt.Sprintf("%s's bid was correct (%d >= %d). %s loses a die.",
			bidder.Name, actual, bid.Count, caller.Name)
	}

	// Snapshot the hands that decided the outcome before anything moves.
	revealed := make(map[string][]int, len(g.Players))
	for _, p := range g.Players {
		revealed[p.ID] = append([]int(nil), p.Hand...)
	}

	res := &Resolution{
		Bid:         bid,
		CallerID:    callerID,
		ActualCount: actual,
		BidStood:    stood,
		LoserID:     loserID,
		Revealed:    revealed,
		ResultText:  text,
	}

	loserIdx := g.indexOf(loserID)
	loser := &g.Players[loserIdx]
	if loser.HandSize > 0 {
		loser.HandSize--
		loser.Hand = loser.Hand[:min(len(loser.Hand), loser.HandSize)]
	}
	if loser.HandSize == 0 {
		loser.Alive = false
	}

	g.CurrentBid = nil
	g.RoundBids = nil

	events := []Event{{Type: EvtRoundResolved, Resolution: res}}
	for i := range g.Players {
		p := &g.Players[i]
		if !p.Alive {
			continue
		}
		p.Hand = rollDice(p.HandSize)
		events = append(events, Event{Type: EvtHandDealt, To: p.ID, Hand: p.Hand})
	}

	if g.aliveCount() == 1 {
		g.Phase = PhaseFinished
		winnerIdx := nextAlive(g.Players, loserIdx)
		res.WinnerID = g.Players[winnerIdx].ID
		events = append(events, Event{Type: EvtGameFinished, WinnerID: res.WinnerID})
		return events, nil
	}

	// Play resumes with whoever sits after the loser, wrapping past any
	// eliminated seats.
	g.TurnIndex = nextAlive(g.Players, loserIdx)
	res.NextTurnID = g.Players[g.TurnIndex].ID
	return events, nil
}

// actualCount tallies dice across live hands matching face, with ones
// wild except when the bid itself is on ones.
func (g *Game) actualCount(face int) int {
	n := 0
	for _, p := range g.Players {
		if !p.Alive {
			continue
		}
		for _, die := range p.Hand {
			if die == face || (face != 1 && die == 1) {
				n++
			}
		}
	}
	return n
}
