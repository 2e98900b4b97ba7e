package service

import (
	"context"
	"testing"

	"fantasy-market/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offerFixture() *stubBackend {
	return &stubBackend{
		offers: domain.OfferLists{
			Incoming: []domain.Offer{
				{
					ID:           "o1",
					PlayerID:     "p1",
					LeagueID:     "L1",
					SellerUserID: "b2b2b2b2b2b2b2b2b2b2b2b2",
					BuyerUserID:  "a1a1a1a1a1a1a1a1a1a1a1a1",
					Price:        5,
					Status:       domain.OfferPending,
					CreatedAt:    ts("2024-03-01T10:00:00Z"),
					Player:       &domain.Player{ID: "p1", DisplayName: "Caps", Team: "G2", Role: domain.RoleMid},
				},
				{ID: "o2", PlayerID: "p2", Status: domain.OfferAccepted},
			},
			Outgoing: []domain.Offer{
				{ID: "o3", PlayerID: "p3", Status: domain.OfferPending, SellerUserID: "a1a1a1a1a1a1a1a1a1a1a1a1"},
			},
		},
	}
}

func TestPendingFiltersResolvedOffers(t *testing.T) {
	f := newFixture(offerFixture())

	lists, err := f.offers.Pending(context.Background(), "L1")
	require.NoError(t, err)
	require.Len(t, lists.Incoming, 1)
	assert.Equal(t, "o1", lists.Incoming[0].ID)
	require.Len(t, lists.Outgoing, 1)
	assert.Equal(t, "o3", lists.Outgoing[0].ID)
}

func TestAcceptTransfersOwnershipAndRecordsTrade(t *testing.T) {
	backend := offerFixture()
	// After acceptance the backend reports the buyer as owner; owners
	// rows for the current user are excluded from the read-model.
	backend.owners = []domain.Owner{
		{PlayerID: "p1", UserID: "a1a1a1a1a1a1a1a1a1a1a1a1", OwnerUsername: "u1"},
	}
	f := newFixture(backend)

	offer, err := f.offers.Accept(context.Background(), "o1", "L1")
	require.NoError(t, err)
	assert.Equal(t, 1, backend.acceptCalls)
	assert.Equal(t, "p1", offer.PlayerID)

	require.Len(t, backend.createdTxs, 1)
	trade := backend.createdTxs[0]
	assert.Equal(t, domain.TransactionTrade, trade.Type)
	assert.Equal(t, "b2b2b2b2b2b2b2b2b2b2b2b2", trade.SellerUserID)
	assert.Equal(t, "a1a1a1a1a1a1a1a1a1a1a1a1", trade.BuyerUserID)
	assert.Equal(t, float64(5), trade.Price)
	assert.Equal(t, "o1", trade.OfferID)
	assert.Equal(t, "Caps", trade.PlayerName)
}

func TestAcceptRequiresIncomingOffer(t *testing.T) {
	backend := offerFixture()
	f := newFixture(backend)

	// o3 is outgoing: the current user is the seller, not the target.
	_, err := f.offers.Accept(context.Background(), "o3", "L1")
	require.ErrorIs(t, err, ErrNotOfferTarget)
	assert.Zero(t, backend.acceptCalls)
}

func TestAcceptUnknownOffer(t *testing.T) {
	backend := offerFixture()
	f := newFixture(backend)

	_, err := f.offers.Accept(context.Background(), "missing", "L1")
	require.ErrorIs(t, err, ErrOfferNotFound)
	assert.Zero(t, backend.acceptCalls)
}

func TestRejectLeavesNoTrace(t *testing.T) {
	backend := offerFixture()
	f := newFixture(backend)

	err := f.offers.Reject(context.Background(), "o1", "L1")
	require.NoError(t, err)
	assert.Equal(t, 1, backend.rejectCalls)
	assert.Empty(t, backend.createdTxs, "rejection records no transaction")
	_, owned := f.owners.Owner("L1", "p1")
	assert.False(t, owned, "rejection does not change ownership")
}

func TestRejectRequiresIncomingOffer(t *testing.T) {
	backend := offerFixture()
	f := newFixture(backend)

	err := f.offers.Reject(context.Background(), "o3", "L1")
	require.ErrorIs(t, err, ErrNotOfferTarget)
	assert.Zero(t, backend.rejectCalls)
}

func TestCounts(t *testing.T) {
	f := newFixture(offerFixture())

	counts, err := f.offers.Counts(context.Background(), "L1")
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Incoming)
	assert.Equal(t, 1, counts.Outgoing)
}
