package domain

import (
	"fmt"
	"math"
	"time"
)

type TransactionType string

const (
	TransactionPurchase TransactionType = "purchase"
	TransactionSale     TransactionType = "sale"
	TransactionTrade    TransactionType = "trade"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionPurchase, TransactionSale, TransactionTrade:
		return true
	}
	return false
}

// Label returns the display label shown in the activity feed.
func (t TransactionType) Label() string {
	switch t {
	case TransactionPurchase:
		return "Compra del mercado"
	case TransactionSale:
		return "Venta al mercado"
	case TransactionTrade:
		return "Intercambio entre usuarios"
	default:
		return "Transacción"
	}
}

// Transaction is an immutable log entry for one ownership event. UserID
// is set for purchase/sale; Seller/Buyer/Offer fields for trades.
type Transaction struct {
	ID             string          `json:"id,omitempty"`
	Type           TransactionType `json:"type"`
	TypeLabel      string          `json:"typeLabel,omitempty"`
	LeagueID       string          `json:"leagueId"`
	PlayerID       string          `json:"playerId"`
	PlayerName     string          `json:"playerName"`
	PlayerTeam     string          `json:"playerTeam"`
	PlayerPosition string          `json:"playerPosition"`
	Price          float64         `json:"price"`
	Timestamp      time.Time       `json:"timestamp"`

	UserID         string `json:"userId,omitempty"`
	SellerUserID   string `json:"sellerUserId,omitempty"`
	SellerUsername string `json:"sellerUsername,omitempty"`
	BuyerUserID    string `json:"buyerUserId,omitempty"`
	BuyerUsername  string `json:"buyerUsername,omitempty"`
	OfferID        string `json:"offerId,omitempty"`
}

// DedupKey identifies the real-world event behind a record. Overlapping
// sources (direct history fetch, offer reconstruction, buffer replay)
// can each produce a record for the same event; exactly one per key
// survives normalization.
func (t Transaction) DedupKey() string {
	if t.OfferID != "" {
		return "trade-" + t.OfferID
	}
	return fmt.Sprintf("%s-%s-%s", t.Type, t.PlayerID, t.Timestamp.UTC().Format(time.RFC3339))
}

// SalePrice is what the market credits a seller: two thirds of the
// listed price, rounded to the nearest unit.
func SalePrice(price float64) float64 {
	return math.Round(price * 2 / 3)
}
