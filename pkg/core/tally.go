package core

// Tally is a non-negative count kept per color. Token pools, territory and
// capture counts all use it.
type Tally struct {
	Black int `json:"black"`
	White int `json:"white"`
}

// Get returns the count for c.
func (t Tally) Get(c Color) int {
	if c == White {
		return t.White
	}
	return t.Black
}

// Set stores n for c, clamping negatives to zero.
func (t *Tally) Set(c Color, n int) {
	if n < 0 {
		n = 0
	}
	if c == White {
		t.White = n
		return
	}
	t.Black = n
}

// Add adds n to the count for c. The result never drops below zero.
func (t *Tally) Add(c Color, n int) {
	t.Set(c, t.Get(c)+n)
}
