package service

import (
	"context"
	"errors"
	"time"

	"fantasy-market/internal/api"
	"fantasy-market/internal/domain"
	"fantasy-market/internal/repository"
	"fantasy-market/internal/session"
	"fantasy-market/internal/store"

	"github.com/rs/zerolog"
)

var errBackendDown = errors.New("connection refused")

// stubBackend implements Backend with overridable funcs and per-method
// call counters, so tests can assert that preflight rejections never
// reach the network.
type stubBackend struct {
	players []domain.Player
	roster  []domain.Player
	owners  []domain.Owner
	offers  domain.OfferLists
	txs     []domain.Transaction
	account api.LeagueAccount

	playersErr error
	txsErr     error
	offersErr  error

	buyFunc      func(playerID, leagueID string) (*api.BuyResponse, error)
	sellFunc     func(playerID, leagueID string) (*api.SellResponse, error)
	createTxFunc func(tx domain.Transaction) error

	buyCalls      int
	sellCalls     int
	offerCalls    int
	acceptCalls   int
	rejectCalls   int
	createTxCalls int
	createdTxs    []domain.Transaction
}

func (b *stubBackend) GetPlayers(ctx context.Context) ([]domain.Player, error) {
	if b.playersErr != nil {
		return nil, b.playersErr
	}
	return b.players, nil
}

func (b *stubBackend) GetUserPlayers(ctx context.Context, leagueID string) ([]domain.Player, error) {
	return b.roster, nil
}

func (b *stubBackend) BuyPlayer(ctx context.Context, playerID, leagueID string, position domain.Role) (*api.BuyResponse, error) {
	b.buyCalls++
	if b.buyFunc != nil {
		return b.buyFunc(playerID, leagueID)
	}
	return &api.BuyResponse{}, nil
}

func (b *stubBackend) SellPlayerToMarket(ctx context.Context, playerID, leagueID string) (*api.SellResponse, error) {
	b.sellCalls++
	if b.sellFunc != nil {
		return b.sellFunc(playerID, leagueID)
	}
	return &api.SellResponse{}, nil
}

func (b *stubBackend) CreateOffer(ctx context.Context, playerID, leagueID, targetUserID string, price float64) (*domain.Offer, error) {
	b.offerCalls++
	return &domain.Offer{
		ID:          "offer-1",
		PlayerID:    playerID,
		LeagueID:    leagueID,
		BuyerUserID: targetUserID,
		Price:       price,
		Status:      domain.OfferPending,
		CreatedAt:   time.Now(),
	}, nil
}

func (b *stubBackend) GetPendingOffers(ctx context.Context, leagueID string) (*domain.OfferLists, error) {
	if b.offersErr != nil {
		return nil, b.offersErr
	}
	lists := b.offers
	return &lists, nil
}

func (b *stubBackend) CountPendingOffers(ctx context.Context, leagueID string) (*domain.OfferCounts, error) {
	counts := domain.OfferCounts{}
	for _, o := range b.offers.Incoming {
		if !o.Status.Resolved() {
			counts.Incoming++
		}
	}
	for _, o := range b.offers.Outgoing {
		if !o.Status.Resolved() {
			counts.Outgoing++
		}
	}
	return &counts, nil
}

func (b *stubBackend) AcceptOffer(ctx context.Context, offerID string) error {
	b.acceptCalls++
	return nil
}

func (b *stubBackend) RejectOffer(ctx context.Context, offerID string) error {
	b.rejectCalls++
	return nil
}

func (b *stubBackend) GetPlayerOwners(ctx context.Context, leagueID string) ([]domain.Owner, error) {
	return b.owners, nil
}

func (b *stubBackend) GetTransactions(ctx context.Context, leagueID string) ([]domain.Transaction, error) {
	if b.txsErr != nil {
		return nil, b.txsErr
	}
	return b.txs, nil
}

func (b *stubBackend) CreateTransaction(ctx context.Context, tx domain.Transaction) error {
	b.createTxCalls++
	if b.createTxFunc != nil {
		if err := b.createTxFunc(tx); err != nil {
			return err
		}
	}
	b.createdTxs = append(b.createdTxs, tx)
	return nil
}

func (b *stubBackend) GetUserLeagueData(ctx context.Context, leagueID string) (*api.LeagueAccount, error) {
	account := b.account
	return &account, nil
}

// memBuffer is an in-memory TransactionBuffer.
type memBuffer struct {
	entries []repository.PendingTransaction
}

func (m *memBuffer) Append(ctx context.Context, tx domain.Transaction, capturedAt time.Time) error {
	m.entries = append(m.entries, repository.PendingTransaction{
		Transaction: tx,
		CapturedAt:  capturedAt,
	})
	return nil
}

func (m *memBuffer) List(ctx context.Context) ([]repository.PendingTransaction, error) {
	out := make([]repository.PendingTransaction, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *memBuffer) Remove(ctx context.Context, playerID string, capturedAt time.Time) error {
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.Transaction.PlayerID == playerID && e.CapturedAt.Equal(capturedAt) {
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return nil
}

func (m *memBuffer) Count(ctx context.Context) (int, error) {
	return len(m.entries), nil
}

func testSession(userID, username, leagueID string) *session.Session {
	sess := session.New(zerolog.Nop())
	sess.Set(session.State{
		Token:    "test-token",
		UserID:   userID,
		Username: username,
		LeagueID: leagueID,
	})
	return sess
}

type fixture struct {
	backend *stubBackend
	buffer  *memBuffer
	owners  *store.OwnerStore
	sess    *session.Session
	txs     *TransactionService
	market  *MarketService
	offers  *OfferService
}

func newFixture(backend *stubBackend) *fixture {
	buffer := &memBuffer{}
	owners := store.NewOwnerStore()
	sess := testSession("a1a1a1a1a1a1a1a1a1a1a1a1", "u1", "L1")
	txs := NewTransactionService(backend, buffer, zerolog.Nop())
	return &fixture{
		backend: backend,
		buffer:  buffer,
		owners:  owners,
		sess:    sess,
		txs:     txs,
		market:  NewMarketService(backend, owners, txs, sess, zerolog.Nop()),
		offers:  NewOfferService(backend, owners, txs, sess, zerolog.Nop()),
	}
}
