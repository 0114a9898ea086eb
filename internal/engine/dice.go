package engine

import "math/rand"

// rollDice deals a fresh hand of n faces in 1..6. math/rand is enough
// here: the requirement is fairness, not unpredictability. Declared as a
// var so tests can pin hands.
var rollDice = func(n int) []int {
	hand := make([]int, n)
	for i := range hand {
		hand[i] = rand.Intn(6) + 1
	}
	return hand
}
