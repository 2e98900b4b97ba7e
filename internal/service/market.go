package service

import (
	"context"
	"fmt"
	"regexp"

	"fantasy-market/internal/api"
	"fantasy-market/internal/constants"
	"fantasy-market/internal/domain"
	"fantasy-market/internal/session"
	"fantasy-market/internal/store"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// MarketState is the purchase affordance for one (player, league,
// current user) triple.
type MarketState string

const (
	StateUnowned            MarketState = "unowned"
	StateOwnedByCurrentUser MarketState = "owned_by_current_user"
	StateOwnedByOther       MarketState = "owned_by_other"
	StateTeamLimitReached   MarketState = "team_limit_reached"
)

// userIDPattern matches the backend's opaque user identifier format.
var userIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// EvaluateMarketState derives a player's market state from the current
// roster and the owners map. Pure function of its inputs; owner name is
// filled for StateOwnedByOther.
func EvaluateMarketState(player domain.Player, roster []domain.Player, owners map[string]string) (MarketState, string) {
	for _, p := range roster {
		if p.ID == player.ID {
			return StateOwnedByCurrentUser, ""
		}
	}
	if owner, ok := owners[player.ID]; ok {
		return StateOwnedByOther, owner
	}
	if teamCount(roster, player.Team) >= constants.TeamPlayerLimit {
		return StateTeamLimitReached, ""
	}
	return StateUnowned, ""
}

func teamCount(roster []domain.Player, team string) int {
	if team == "" {
		return 0
	}
	count := 0
	for _, p := range roster {
		if p.Team == team {
			count++
		}
	}
	return count
}

// MarketService runs the market side of the ownership state machine:
// the merged market view, purchases, market sales and offer creation,
// with client-side preflight checks before any backend call.
type MarketService struct {
	backend      Backend
	owners       *store.OwnerStore
	transactions *TransactionService
	session      *session.Session
	logger       zerolog.Logger
}

func NewMarketService(backend Backend, owners *store.OwnerStore, transactions *TransactionService, sess *session.Session, logger zerolog.Logger) *MarketService {
	return &MarketService{
		backend:      backend,
		owners:       owners,
		transactions: transactions,
		session:      sess,
		logger:       logger,
	}
}

// MarketEntry is one player in the market view with its resolved
// affordance.
type MarketEntry struct {
	Player domain.Player `json:"player"`
	State  MarketState   `json:"state"`
	Owner  string        `json:"owner,omitempty"`
}

type MarketView struct {
	Entries []MarketEntry `json:"entries"`
	Balance float64       `json:"balance"`
}

// View gathers players, ownership, the user's roster and their balance
// concurrently and merges them into the display model. It also rebuilds
// the owners read-model as a side effect, so a fresh view always
// reflects the backend's current ownership.
func (s *MarketService) View(ctx context.Context, leagueID string) (*MarketView, error) {
	var (
		players    []domain.Player
		ownersList []domain.Owner
		roster     []domain.Player
		account    *api.LeagueAccount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		players, err = s.backend.GetPlayers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		ownersList, err = s.backend.GetPlayerOwners(gctx, leagueID)
		return err
	})
	g.Go(func() error {
		var err error
		roster, err = s.backend.GetUserPlayers(gctx, leagueID)
		return err
	})
	g.Go(func() error {
		var err error
		account, err = s.backend.GetUserLeagueData(gctx, leagueID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load market view: %w", err)
	}

	state := s.session.Get()
	s.owners.Replace(leagueID, state.UserID, ownersList)
	owners := s.owners.Snapshot(leagueID)

	entries := make([]MarketEntry, 0, len(players))
	for _, p := range players {
		st, owner := EvaluateMarketState(p, roster, owners)
		entries = append(entries, MarketEntry{Player: p, State: st, Owner: owner})
	}

	s.logger.Debug().
		Int("players", len(entries)).
		Int("owned_by_others", len(owners)).
		Int("roster", len(roster)).
		Str("league_id", leagueID).
		Msg("market view assembled")

	return &MarketView{Entries: entries, Balance: account.Money}, nil
}

// RefreshOwners rebuilds the owners read-model from the backend.
func (s *MarketService) RefreshOwners(ctx context.Context, leagueID string) error {
	ownersList, err := s.backend.GetPlayerOwners(ctx, leagueID)
	if err != nil {
		return fmt.Errorf("failed to refresh owners: %w", err)
	}
	s.owners.Replace(leagueID, s.session.Get().UserID, ownersList)
	return nil
}

// Buy purchases an unowned player from the market. Preflight rejects
// the attempt without a backend call when the player is already owned
// or the roster already holds the team limit; the backend may still
// reject for reasons the client cannot see (a concurrent purchase,
// insufficient funds) and its message is passed through untouched.
func (s *MarketService) Buy(ctx context.Context, playerID, leagueID string) (*api.BuyResponse, error) {
	player, roster, err := s.playerAndRoster(ctx, playerID, leagueID)
	if err != nil {
		return nil, err
	}

	switch state, owner := EvaluateMarketState(*player, roster, s.owners.Snapshot(leagueID)); state {
	case StateOwnedByCurrentUser:
		return nil, fmt.Errorf("%w: already on your roster", ErrAlreadyOwned)
	case StateOwnedByOther:
		return nil, fmt.Errorf("%w by %s", ErrAlreadyOwned, owner)
	case StateTeamLimitReached:
		return nil, fmt.Errorf("%w: already %d players from %s", ErrTeamLimitReached, constants.TeamPlayerLimit, player.Team)
	}

	resp, err := s.backend.BuyPlayer(ctx, playerID, leagueID, player.Role)
	if err != nil {
		s.logger.Error().Err(err).Str("player_id", playerID).Str("league_id", leagueID).Msg("purchase rejected")
		return nil, err
	}

	s.logger.Info().
		Str("player_id", playerID).
		Str("league_id", leagueID).
		Float64("price", player.Price).
		Msg("player purchased")

	s.record(ctx, domain.Transaction{
		Type:           domain.TransactionPurchase,
		LeagueID:       leagueID,
		PlayerID:       playerID,
		PlayerName:     player.DisplayName,
		PlayerTeam:     player.Team,
		PlayerPosition: player.Role.String(),
		Price:          purchasePrice(player.Price, resp.Price),
		UserID:         s.session.Get().UserID,
	})

	return resp, nil
}

func purchasePrice(known, reported float64) float64 {
	if known > 0 {
		return known
	}
	return reported
}

// SellResult is a completed market sale: the backend's response plus
// the credited sale price.
type SellResult struct {
	SalePrice       float64 `json:"salePrice"`
	NewBalance      float64 `json:"newBalance"`
	CancelledOffers int     `json:"cancelledOffers"`
}

// Sell returns a rostered player to the market for round(price*2/3).
// Pending offers for the player are cancelled server-side; the caller
// only needs to refetch the pending list afterwards.
func (s *MarketService) Sell(ctx context.Context, playerID, leagueID string) (*SellResult, error) {
	roster, err := s.backend.GetUserPlayers(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	player := findPlayer(roster, playerID)
	if player == nil {
		return nil, ErrNotOwned
	}

	resp, err := s.backend.SellPlayerToMarket(ctx, playerID, leagueID)
	if err != nil {
		s.logger.Error().Err(err).Str("player_id", playerID).Str("league_id", leagueID).Msg("sale rejected")
		return nil, err
	}

	salePrice := domain.SalePrice(player.Price)
	s.logger.Info().
		Str("player_id", playerID).
		Str("league_id", leagueID).
		Float64("sale_price", salePrice).
		Int("cancelled_offers", resp.CancelledOffers).
		Msg("player sold to market")

	s.record(ctx, domain.Transaction{
		Type:           domain.TransactionSale,
		LeagueID:       leagueID,
		PlayerID:       playerID,
		PlayerName:     player.DisplayName,
		PlayerTeam:     player.Team,
		PlayerPosition: player.Role.String(),
		Price:          salePrice,
		UserID:         s.session.Get().UserID,
	})

	return &SellResult{
		SalePrice:       salePrice,
		NewBalance:      resp.NewBalance,
		CancelledOffers: resp.CancelledOffers,
	}, nil
}

// CreateOffer proposes a trade of a rostered player to one target user.
// Ownership does not change until the target accepts.
func (s *MarketService) CreateOffer(ctx context.Context, playerID, leagueID, targetUserID string, price float64) (*domain.Offer, error) {
	if !userIDPattern.MatchString(targetUserID) {
		return nil, ErrInvalidTargetUser
	}
	if price <= 0 {
		return nil, ErrInvalidPrice
	}

	roster, err := s.backend.GetUserPlayers(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	if findPlayer(roster, playerID) == nil {
		return nil, ErrNotOwned
	}

	offer, err := s.backend.CreateOffer(ctx, playerID, leagueID, targetUserID, price)
	if err != nil {
		s.logger.Error().Err(err).Str("player_id", playerID).Str("target_user_id", targetUserID).Msg("offer creation rejected")
		return nil, err
	}

	s.logger.Info().
		Str("offer_id", offer.ID).
		Str("player_id", playerID).
		Str("target_user_id", targetUserID).
		Float64("price", price).
		Msg("offer created")
	return offer, nil
}

func (s *MarketService) playerAndRoster(ctx context.Context, playerID, leagueID string) (*domain.Player, []domain.Player, error) {
	var (
		players []domain.Player
		roster  []domain.Player
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		players, err = s.backend.GetPlayers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		roster, err = s.backend.GetUserPlayers(gctx, leagueID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("failed to load player data: %w", err)
	}

	player := findPlayer(players, playerID)
	if player == nil {
		return nil, nil, ErrPlayerNotFound
	}
	return player, roster, nil
}

func findPlayer(players []domain.Player, id string) *domain.Player {
	for i := range players {
		if players[i].ID == id {
			return &players[i]
		}
	}
	return nil
}

// record registers a transaction for a mutation that already succeeded.
// A failed write is buffered by the transaction service, so the
// mutation's outcome is never rolled back over a logging failure.
func (s *MarketService) record(ctx context.Context, tx domain.Transaction) {
	if err := s.transactions.Register(ctx, tx); err != nil {
		s.logger.Warn().
			Err(err).
			Str("type", string(tx.Type)).
			Str("player_id", tx.PlayerID).
			Msg("transaction record deferred to offline buffer")
	}
}
