package domain

// Player is the canonical shape every backend response is normalized
// into before the rest of the gateway touches it. Role is always stored
// in canonical form (see ParseRole).
type Player struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	Team        string  `json:"team"`
	Role        Role    `json:"role"`
	ImageURL    string  `json:"imageUrl"`
	Price       float64 `json:"price"`
}

// Owner is one row of the per-league ownership listing.
type Owner struct {
	PlayerID      string `json:"playerId"`
	UserID        string `json:"userId"`
	OwnerUsername string `json:"ownerUsername"`
}
