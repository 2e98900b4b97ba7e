package api

import (
	"encoding/json"
	"time"
)

// RawPlayer is a player record as the backend actually ships it. Field
// names vary by endpoint (name/summonerName, role/position,
// image/imageUrl/profilePhotoUrl), so everything optional is kept loose
// here and reconciled by NormalizePlayer.
type RawPlayer struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	SummonerName    string  `json:"summonerName"`
	Role            string  `json:"role"`
	Position        string  `json:"position"`
	Team            string  `json:"team"`
	TeamName        string  `json:"teamName"`
	Image           string  `json:"image"`
	ImageURL        string  `json:"imageUrl"`
	ProfilePhotoURL string  `json:"profilePhotoUrl"`
	Price           float64 `json:"price"`
}

// UserRef handles the backend's two spellings of a user reference:
// either a bare id string or a populated {_id, username} document.
type UserRef struct {
	ID       string
	Username string
}

func (u *UserRef) UnmarshalJSON(b []byte) error {
	var id string
	if err := json.Unmarshal(b, &id); err == nil {
		u.ID = id
		return nil
	}
	var doc struct {
		ID       string `json:"_id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	u.ID = doc.ID
	u.Username = doc.Username
	return nil
}

func (u UserRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.ID)
}

type RawOffer struct {
	ID        string     `json:"_id"`
	PlayerID  string     `json:"playerId"`
	LeagueID  string     `json:"leagueId"`
	Seller    UserRef    `json:"sellerUserId"`
	Buyer     UserRef    `json:"buyerUserId"`
	Price     float64    `json:"price"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	Player    *RawPlayer `json:"player"`
}

type rawOfferLists struct {
	Incoming []RawOffer `json:"incoming"`
	Outgoing []RawOffer `json:"outgoing"`
}

// RawTransaction carries both timestamp spellings the backend has used;
// NormalizeTransaction prefers timestamp over createdAt.
type RawTransaction struct {
	ID             string     `json:"_id"`
	Type           string     `json:"type"`
	LeagueID       string     `json:"leagueId"`
	PlayerID       string     `json:"playerId"`
	PlayerName     string     `json:"playerName"`
	PlayerTeam     string     `json:"playerTeam"`
	PlayerPosition string     `json:"playerPosition"`
	Price          float64    `json:"price"`
	Timestamp      *time.Time `json:"timestamp"`
	CreatedAt      *time.Time `json:"createdAt"`
	UserID         string     `json:"userId"`
	Seller         UserRef    `json:"sellerUserId"`
	Buyer          UserRef    `json:"buyerUserId"`
	OfferID        string     `json:"offerId"`
}
