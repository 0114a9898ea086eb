package engine

// Bid is a public claim that at least Count dice across all live hands
// show Face, ones wild unless Face is 1.
type Bid struct {
	Count    int
	Face     int
	BidderID string
}

// Beats reports whether b is a legal raise over prev. The ordering is
// lexicographic: a higher count always wins, a tied count needs a higher
// face. Equal bids never beat each other.
func (b Bid) Beats(prev Bid) bool {
	if b.Count != prev.Count {
		return b.Count > prev.Count
	}
	return b.Face > prev.Face
}
