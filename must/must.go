package must

// Be panics with msg when an internal invariant does not hold.
func Be(expr bool, msg string) {
	if !expr {
		panic("invariant violated: " + msg)
	}
}
