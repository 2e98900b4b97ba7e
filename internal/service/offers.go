package service

import (
	"context"
	"fmt"

	"fantasy-market/internal/domain"
	"fantasy-market/internal/session"
	"fantasy-market/internal/store"

	"github.com/rs/zerolog"
)

// OfferService drives the trade-offer side of the state machine:
// pending lists, acceptance (ownership transfer + trade record) and
// rejection (terminal, no side effects).
type OfferService struct {
	backend      Backend
	owners       *store.OwnerStore
	transactions *TransactionService
	session      *session.Session
	logger       zerolog.Logger
}

func NewOfferService(backend Backend, owners *store.OwnerStore, transactions *TransactionService, sess *session.Session, logger zerolog.Logger) *OfferService {
	return &OfferService{
		backend:      backend,
		owners:       owners,
		transactions: transactions,
		session:      sess,
		logger:       logger,
	}
}

// Pending returns a league's unresolved offers, split by direction.
// Resolved offers stay on the server but are filtered out of this view.
func (s *OfferService) Pending(ctx context.Context, leagueID string) (*domain.OfferLists, error) {
	offers, err := s.backend.GetPendingOffers(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to load offers: %w", err)
	}
	return &domain.OfferLists{
		Incoming: pendingOnly(offers.Incoming),
		Outgoing: pendingOnly(offers.Outgoing),
	}, nil
}

func pendingOnly(offers []domain.Offer) []domain.Offer {
	pending := make([]domain.Offer, 0, len(offers))
	for _, o := range offers {
		if !o.Status.Resolved() {
			pending = append(pending, o)
		}
	}
	return pending
}

// Counts returns the pending-offer badge counters.
func (s *OfferService) Counts(ctx context.Context, leagueID string) (*domain.OfferCounts, error) {
	counts, err := s.backend.CountPendingOffers(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to count offers: %w", err)
	}
	return counts, nil
}

// Accept settles a pending offer addressed to the current user:
// ownership moves to them, a trade transaction is recorded, and the
// offer leaves both pending lists. Only the designated buyer may
// accept; that is checked client-side by requiring the offer in the
// incoming list.
func (s *OfferService) Accept(ctx context.Context, offerID, leagueID string) (*domain.Offer, error) {
	offer, incoming, err := s.findOffer(ctx, offerID, leagueID)
	if err != nil {
		return nil, err
	}
	if !incoming {
		return nil, ErrNotOfferTarget
	}

	if err := s.backend.AcceptOffer(ctx, offerID); err != nil {
		s.logger.Error().Err(err).Str("offer_id", offerID).Msg("offer acceptance rejected")
		return nil, err
	}

	s.logger.Info().
		Str("offer_id", offerID).
		Str("player_id", offer.PlayerID).
		Str("seller_user_id", offer.SellerUserID).
		Msg("offer accepted, ownership transferred")

	s.recordTrade(ctx, offer)

	// Ownership changed server-side; rebuild the read-model so the
	// market view stops offering the player.
	if ownersList, err := s.backend.GetPlayerOwners(ctx, leagueID); err != nil {
		s.logger.Warn().Err(err).Str("league_id", leagueID).Msg("failed to refresh owners after trade")
	} else {
		s.owners.Replace(leagueID, s.session.Get().UserID, ownersList)
	}

	return offer, nil
}

// Reject resolves a pending offer with no ownership change and no
// transaction. Only the designated buyer may reject.
func (s *OfferService) Reject(ctx context.Context, offerID, leagueID string) error {
	_, incoming, err := s.findOffer(ctx, offerID, leagueID)
	if err != nil {
		return err
	}
	if !incoming {
		return ErrNotOfferTarget
	}

	if err := s.backend.RejectOffer(ctx, offerID); err != nil {
		s.logger.Error().Err(err).Str("offer_id", offerID).Msg("offer rejection failed")
		return err
	}

	s.logger.Info().Str("offer_id", offerID).Msg("offer rejected")
	return nil
}

// findOffer locates an offer in the league's pending lists and reports
// whether it is incoming for the current user.
func (s *OfferService) findOffer(ctx context.Context, offerID, leagueID string) (*domain.Offer, bool, error) {
	offers, err := s.backend.GetPendingOffers(ctx, leagueID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load offers: %w", err)
	}

	for i := range offers.Incoming {
		if offers.Incoming[i].ID == offerID {
			return &offers.Incoming[i], true, nil
		}
	}
	for i := range offers.Outgoing {
		if offers.Outgoing[i].ID == offerID {
			return &offers.Outgoing[i], false, nil
		}
	}
	return nil, false, ErrOfferNotFound
}

// recordTrade logs the trade transaction for an accepted offer. The
// acceptance already happened; a write failure here lands in the
// offline buffer and must not undo the trade.
func (s *OfferService) recordTrade(ctx context.Context, offer *domain.Offer) {
	buyerID := offer.BuyerUserID
	if buyerID == "" {
		buyerID = s.session.Get().UserID
	}

	tx := domain.Transaction{
		Type:         domain.TransactionTrade,
		LeagueID:     offer.LeagueID,
		PlayerID:     offer.PlayerID,
		Price:        offer.Price,
		SellerUserID: offer.SellerUserID,
		BuyerUserID:  buyerID,
		OfferID:      offer.ID,
	}
	if offer.Player != nil {
		tx.PlayerName = offer.Player.DisplayName
		tx.PlayerTeam = offer.Player.Team
		tx.PlayerPosition = offer.Player.Role.String()
	}

	if err := s.transactions.Register(ctx, tx); err != nil {
		s.logger.Warn().Err(err).Str("offer_id", offer.ID).Msg("trade transaction record deferred to offline buffer")
	}
}
