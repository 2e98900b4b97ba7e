package api

import (
	"fantasy-market/internal/constants"
	"fantasy-market/internal/domain"
)

// NormalizePlayer reconciles a raw backend player record into the
// canonical shape. Precedence per field is fixed: summonerName over
// name, role over position (lower-cased, aliases canonicalized),
// imageUrl over image over profilePhotoUrl with a placeholder fallback,
// and a default price when none is present. Pure and idempotent: a
// record already in canonical form maps to itself.
func NormalizePlayer(raw *RawPlayer) *domain.Player {
	if raw == nil {
		return nil
	}

	name := raw.SummonerName
	if name == "" {
		name = raw.Name
	}

	role := raw.Role
	if role == "" {
		role = raw.Position
	}

	team := raw.Team
	if team == "" {
		team = raw.TeamName
	}

	image := raw.ImageURL
	if image == "" {
		image = raw.Image
	}
	if image == "" {
		image = raw.ProfilePhotoURL
	}
	if image == "" {
		image = constants.PlaceholderImageURL
	}

	price := raw.Price
	if price <= 0 {
		price = constants.DefaultPlayerPrice
	}

	return &domain.Player{
		ID:          raw.ID,
		DisplayName: name,
		Team:        team,
		Role:        domain.ParseRole(role),
		ImageURL:    image,
		Price:       price,
	}
}

func normalizePlayers(raw []RawPlayer) []domain.Player {
	players := make([]domain.Player, 0, len(raw))
	for i := range raw {
		if p := NormalizePlayer(&raw[i]); p != nil {
			players = append(players, *p)
		}
	}
	return players
}

func NormalizeOffer(raw *RawOffer) *domain.Offer {
	if raw == nil {
		return nil
	}
	playerID := raw.PlayerID
	player := NormalizePlayer(raw.Player)
	if playerID == "" && player != nil {
		playerID = player.ID
	}
	return &domain.Offer{
		ID:             raw.ID,
		PlayerID:       playerID,
		LeagueID:       raw.LeagueID,
		SellerUserID:   raw.Seller.ID,
		SellerUsername: raw.Seller.Username,
		BuyerUserID:    raw.Buyer.ID,
		BuyerUsername:  raw.Buyer.Username,
		Price:          raw.Price,
		Status:         domain.OfferStatus(raw.Status),
		CreatedAt:      raw.CreatedAt,
		Player:         player,
	}
}

func normalizeOffers(raw []RawOffer) []domain.Offer {
	offers := make([]domain.Offer, 0, len(raw))
	for i := range raw {
		if o := NormalizeOffer(&raw[i]); o != nil {
			offers = append(offers, *o)
		}
	}
	return offers
}

func NormalizeTransaction(raw RawTransaction) domain.Transaction {
	tx := domain.Transaction{
		ID:             raw.ID,
		Type:           domain.TransactionType(raw.Type),
		LeagueID:       raw.LeagueID,
		PlayerID:       raw.PlayerID,
		PlayerName:     raw.PlayerName,
		PlayerTeam:     raw.PlayerTeam,
		PlayerPosition: raw.PlayerPosition,
		Price:          raw.Price,
		UserID:         raw.UserID,
		SellerUserID:   raw.Seller.ID,
		SellerUsername: raw.Seller.Username,
		BuyerUserID:    raw.Buyer.ID,
		BuyerUsername:  raw.Buyer.Username,
		OfferID:        raw.OfferID,
	}
	if raw.Timestamp != nil {
		tx.Timestamp = *raw.Timestamp
	} else if raw.CreatedAt != nil {
		tx.Timestamp = *raw.CreatedAt
	}
	return tx
}
