package domain

import "time"

type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferRejected OfferStatus = "rejected"

	// Some backend records use "completed" for accepted offers.
	OfferCompleted OfferStatus = "completed"
)

// Resolved reports whether the offer reached a terminal state and must
// no longer appear in a pending list.
func (s OfferStatus) Resolved() bool {
	return s != OfferPending
}

// Accepted covers both spellings the backend has used for a settled
// trade.
func (s OfferStatus) Accepted() bool {
	return s == OfferAccepted || s == OfferCompleted
}

// Offer is a peer-to-peer trade proposal: a seller offers one of their
// players to a single target buyer at an informational price. Ownership
// only moves when the buyer accepts.
type Offer struct {
	ID             string      `json:"id"`
	PlayerID       string      `json:"playerId"`
	LeagueID       string      `json:"leagueId"`
	SellerUserID   string      `json:"sellerUserId"`
	SellerUsername string      `json:"sellerUsername,omitempty"`
	BuyerUserID    string      `json:"buyerUserId"`
	BuyerUsername  string      `json:"buyerUsername,omitempty"`
	Price          float64     `json:"price"`
	Status         OfferStatus `json:"status"`
	CreatedAt      time.Time   `json:"createdAt"`

	// Player carries the embedded player record when the backend
	// includes one; may be nil.
	Player *Player `json:"player,omitempty"`
}

// OfferLists splits a league's offers by direction relative to the
// current user: incoming offers target them as buyer, outgoing ones
// were created by them as seller.
type OfferLists struct {
	Incoming []Offer `json:"incoming"`
	Outgoing []Offer `json:"outgoing"`
}

type OfferCounts struct {
	Incoming int `json:"incoming"`
	Outgoing int `json:"outgoing"`
}
