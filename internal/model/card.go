package model

// Card is the only record cardman manages.
// The JSON shape is the persisted wire format; field order matters for
// byte-identical round trips.
type Card struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DefaultCards returns the cards seeded into empty or unreadable storage.
func DefaultCards() []Card {
	return []Card{
		{ID: 1, Title: "Card 1", Description: "This is the description for card 1."},
		{ID: 2, Title: "Card 2", Description: "This is the description for card 2."},
		{ID: 3, Title: "Card 3", Description: "This is the description for card 3."},
	}
}

// CloneCards returns a copy of cards that shares no backing array with it.
// A nil input yields an empty, non-nil slice.
func CloneCards(cards []Card) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}

// MaxID returns the largest id in cards, or 0 for an empty list.
func MaxID(cards []Card) int {
	max := 0
	for _, c := range cards {
		if c.ID > max {
			max = c.ID
		}
	}
	return max
}

// IndexOf returns the position of the card with the given id, or -1.
func IndexOf(cards []Card, id int) int {
	for i, c := range cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Equal reports whether two card lists hold the same cards in the same order.
func Equal(a, b []Card) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
