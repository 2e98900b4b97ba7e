package service

import (
	"context"
	"testing"
	"time"

	"fantasy-market/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDeduplicateKeepsOnePerKey(t *testing.T) {
	when := ts("2024-03-01T10:00:00Z")
	txs := []domain.Transaction{
		{Type: domain.TransactionPurchase, PlayerID: "p1", Timestamp: when, UserID: "u1"},
		{Type: domain.TransactionPurchase, PlayerID: "p1", Timestamp: when, UserID: "u1-dup"},
		{Type: domain.TransactionSale, PlayerID: "p1", Timestamp: when},
		{Type: domain.TransactionTrade, PlayerID: "p2", OfferID: "o1", Timestamp: when},
		{Type: domain.TransactionTrade, PlayerID: "p2", OfferID: "o1", Timestamp: when.Add(time.Hour)},
		{Type: domain.TransactionTrade, PlayerID: "p2", OfferID: "o2", Timestamp: when},
	}

	unique := Deduplicate(txs)
	require.Len(t, unique, 4, "one record per distinct dedup key")

	// First occurrence wins.
	assert.Equal(t, "u1", unique[0].UserID)
	assert.Equal(t, when, unique[2].Timestamp)
}

func TestDeduplicateStampsTypeLabels(t *testing.T) {
	txs := []domain.Transaction{
		{Type: domain.TransactionPurchase, PlayerID: "p1", Timestamp: ts("2024-03-01T10:00:00Z")},
		{Type: domain.TransactionSale, PlayerID: "p2", Timestamp: ts("2024-03-01T11:00:00Z")},
		{Type: domain.TransactionTrade, PlayerID: "p3", OfferID: "o1"},
		{Type: "mystery", PlayerID: "p4", Timestamp: ts("2024-03-01T12:00:00Z")},
	}

	unique := Deduplicate(txs)
	require.Len(t, unique, 4)
	assert.Equal(t, "Compra del mercado", unique[0].TypeLabel)
	assert.Equal(t, "Venta al mercado", unique[1].TypeLabel)
	assert.Equal(t, "Intercambio entre usuarios", unique[2].TypeLabel)
	assert.Equal(t, "Transacción", unique[3].TypeLabel)
}

func TestHistoryUsesPrimarySource(t *testing.T) {
	backend := &stubBackend{
		txs: []domain.Transaction{
			{Type: domain.TransactionPurchase, PlayerID: "p1", LeagueID: "L1", Timestamp: ts("2024-03-01T10:00:00Z")},
			{Type: domain.TransactionPurchase, PlayerID: "p1", LeagueID: "L1", Timestamp: ts("2024-03-01T10:00:00Z")},
		},
	}
	f := newFixture(backend)

	txs := f.txs.History(context.Background(), "L1")
	require.Len(t, txs, 1)
	assert.Equal(t, "Compra del mercado", txs[0].TypeLabel)
}

func TestHistoryFallsBackToOfferGathering(t *testing.T) {
	backend := &stubBackend{
		txsErr: errBackendDown,
		offers: domain.OfferLists{
			Incoming: []domain.Offer{
				{
					ID:           "o1",
					PlayerID:     "p1",
					LeagueID:     "L1",
					SellerUserID: "u1",
					BuyerUserID:  "u2",
					Price:        5,
					Status:       domain.OfferAccepted,
					CreatedAt:    ts("2024-03-01T10:00:00Z"),
					Player:       &domain.Player{ID: "p1", DisplayName: "Caps", Team: "G2", Role: domain.RoleMid},
				},
				{ID: "o2", PlayerID: "p2", Status: domain.OfferPending, CreatedAt: ts("2024-03-02T10:00:00Z")},
			},
			Outgoing: []domain.Offer{
				{ID: "o3", PlayerID: "p3", Status: domain.OfferCompleted, CreatedAt: ts("2024-03-03T10:00:00Z")},
				{ID: "o4", PlayerID: "p4", Status: domain.OfferRejected, CreatedAt: ts("2024-03-04T10:00:00Z")},
			},
		},
	}
	f := newFixture(backend)

	txs := f.txs.History(context.Background(), "L1")
	require.Len(t, txs, 2, "only accepted/completed offers become trades")

	// Sorted most recent first.
	assert.Equal(t, "o3", txs[0].OfferID)
	assert.Equal(t, "o1", txs[1].OfferID)

	trade := txs[1]
	assert.Equal(t, domain.TransactionTrade, trade.Type)
	assert.Equal(t, "Intercambio entre usuarios", trade.TypeLabel)
	assert.Equal(t, "Caps", trade.PlayerName)
	assert.Equal(t, "u1", trade.SellerUserID)
	assert.Equal(t, "u2", trade.BuyerUserID)
	assert.Equal(t, float64(5), trade.Price)
}

func TestHistoryReturnsEmptyWhenEverythingFails(t *testing.T) {
	backend := &stubBackend{
		txsErr:    errBackendDown,
		offersErr: errBackendDown,
	}
	f := newFixture(backend)

	txs := f.txs.History(context.Background(), "L1")
	assert.Empty(t, txs)
}

func TestRegisterValidation(t *testing.T) {
	backend := &stubBackend{}
	f := newFixture(backend)
	ctx := context.Background()

	cases := []domain.Transaction{
		{Type: "bogus", LeagueID: "L1", PlayerID: "p1", UserID: "u1"},
		{Type: domain.TransactionPurchase, PlayerID: "p1", UserID: "u1"},
		{Type: domain.TransactionPurchase, LeagueID: "L1", UserID: "u1"},
		{Type: domain.TransactionPurchase, LeagueID: "L1", PlayerID: "p1"},
		{Type: domain.TransactionTrade, LeagueID: "L1", PlayerID: "p1", BuyerUserID: "u2"},
	}
	for _, tx := range cases {
		err := f.txs.Register(ctx, tx)
		require.ErrorIs(t, err, ErrInvalidTransaction)
	}

	assert.Zero(t, backend.createTxCalls, "validation failures never reach the network")
	count, err := f.buffer.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "validation failures never touch the buffer")
}
