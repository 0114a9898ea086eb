package engine

// nextAlive scans forward cyclically from fromIndex+1 and returns the
// first index holding a live player. If the scan wraps without finding
// one it returns fromIndex unchanged; the win check runs before this in
// every resolution path, so that case means zero or one players total.
// fromIndex may be -1 to find the first live seat.
func nextAlive(players []Player, fromIndex int) int {
	n := len(players)
	if n == 0 {
		return 0
	}
	for step := 1; step <= n; step++ {
		idx := (fromIndex + step + n) % n
		if players[idx].Alive {
			return idx
		}
	}
	if fromIndex < 0 {
		return 0
	}
	return fromIndex
}
