package service

import (
	"context"

	"fantasy-market/internal/api"
	"fantasy-market/internal/domain"
)

// Backend is the slice of the fantasy-league REST API the services
// depend on. *api.Client implements it; tests substitute stubs.
type Backend interface {
	GetPlayers(ctx context.Context) ([]domain.Player, error)
	GetUserPlayers(ctx context.Context, leagueID string) ([]domain.Player, error)
	BuyPlayer(ctx context.Context, playerID, leagueID string, position domain.Role) (*api.BuyResponse, error)
	SellPlayerToMarket(ctx context.Context, playerID, leagueID string) (*api.SellResponse, error)
	CreateOffer(ctx context.Context, playerID, leagueID, targetUserID string, price float64) (*domain.Offer, error)
	GetPendingOffers(ctx context.Context, leagueID string) (*domain.OfferLists, error)
	CountPendingOffers(ctx context.Context, leagueID string) (*domain.OfferCounts, error)
	AcceptOffer(ctx context.Context, offerID string) error
	RejectOffer(ctx context.Context, offerID string) error
	GetPlayerOwners(ctx context.Context, leagueID string) ([]domain.Owner, error)
	GetTransactions(ctx context.Context, leagueID string) ([]domain.Transaction, error)
	CreateTransaction(ctx context.Context, tx domain.Transaction) error
	GetUserLeagueData(ctx context.Context, leagueID string) (*api.LeagueAccount, error)
}
