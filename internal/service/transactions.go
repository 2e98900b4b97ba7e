package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"fantasy-market/internal/domain"
	"fantasy-market/internal/repository"

	"github.com/rs/zerolog"
)

// TransactionBuffer is the offline buffer the service replays failed
// writes from. *repository.BufferRepository implements it.
type TransactionBuffer interface {
	Append(ctx context.Context, tx domain.Transaction, capturedAt time.Time) error
	List(ctx context.Context) ([]repository.PendingTransaction, error)
	Remove(ctx context.Context, playerID string, capturedAt time.Time) error
	Count(ctx context.Context) (int, error)
}

// TransactionService owns the transaction log read-model: fetching and
// deduplicating history, registering new entries, and replaying the
// offline buffer.
type TransactionService struct {
	backend Backend
	buffer  TransactionBuffer
	logger  zerolog.Logger

	syncMu sync.Mutex
	now    func() time.Time
}

func NewTransactionService(backend Backend, buffer TransactionBuffer, logger zerolog.Logger) *TransactionService {
	return &TransactionService{
		backend: backend,
		buffer:  buffer,
		logger:  logger,
		now:     time.Now,
	}
}

// History returns the deduplicated, display-ready transaction log for a
// league. The direct history endpoint is the primary source; if it
// fails for any reason the gather path reconstructs what it can from
// resolved offers. History is non-critical display data, so a total
// failure yields an empty list, never an error.
func (s *TransactionService) History(ctx context.Context, leagueID string) []domain.Transaction {
	txs, err := s.backend.GetTransactions(ctx, leagueID)
	if err != nil {
		s.logger.Warn().Err(err).Str("league_id", leagueID).Msg("transaction history fetch failed, gathering from fallback sources")
		return s.gatherAvailable(ctx, leagueID)
	}

	unique := Deduplicate(txs)
	s.logger.Debug().
		Int("raw", len(txs)).
		Int("unique", len(unique)).
		Str("league_id", leagueID).
		Msg("transaction history normalized")
	return unique
}

// Deduplicate keeps exactly one transaction per dedup key, first
// occurrence wins, and stamps each survivor with its display label.
func Deduplicate(txs []domain.Transaction) []domain.Transaction {
	seen := make(map[string]struct{}, len(txs))
	unique := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		key := tx.DedupKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tx.TypeLabel = tx.Type.Label()
		unique = append(unique, tx)
	}
	return unique
}

// gatherAvailable reconstructs a transaction list from whatever sources
// still answer: accepted offers become synthetic trade records, and
// market purchases/sales come from the market source (currently empty,
// the backend exposes no endpoint to rebuild them). Merged results are
// sorted most recent first to match the primary source's ordering.
func (s *TransactionService) gatherAvailable(ctx context.Context, leagueID string) []domain.Transaction {
	var txs []domain.Transaction

	offers, err := s.backend.GetPendingOffers(ctx, leagueID)
	if err != nil {
		s.logger.Warn().Err(err).Str("league_id", leagueID).Msg("offer source unavailable while gathering transactions")
	} else {
		txs = append(txs, tradesFromOffers(offers.Incoming)...)
		txs = append(txs, tradesFromOffers(offers.Outgoing)...)
	}

	market, err := s.getMarketTransactions(ctx, leagueID)
	if err != nil {
		s.logger.Warn().Err(err).Str("league_id", leagueID).Msg("market source unavailable while gathering transactions")
	} else {
		txs = append(txs, market...)
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Timestamp.After(txs[j].Timestamp)
	})

	unique := Deduplicate(txs)
	s.logger.Info().
		Int("count", len(unique)).
		Str("league_id", leagueID).
		Msg("transactions gathered from fallback sources")
	return unique
}

// getMarketTransactions would rebuild purchase/sale records when the
// history endpoint is down. There is no backend source to rebuild them
// from yet, so the gather path only recovers trades.
func (s *TransactionService) getMarketTransactions(ctx context.Context, leagueID string) ([]domain.Transaction, error) {
	return nil, nil
}

func tradesFromOffers(offers []domain.Offer) []domain.Transaction {
	var txs []domain.Transaction
	for _, o := range offers {
		if !o.Status.Accepted() {
			continue
		}

		tx := domain.Transaction{
			ID:             o.ID,
			Type:           domain.TransactionTrade,
			LeagueID:       o.LeagueID,
			PlayerID:       o.PlayerID,
			Price:          o.Price,
			Timestamp:      o.CreatedAt,
			SellerUserID:   o.SellerUserID,
			SellerUsername: o.SellerUsername,
			BuyerUserID:    o.BuyerUserID,
			BuyerUsername:  o.BuyerUsername,
			OfferID:        o.ID,
		}
		if o.Player != nil {
			tx.PlayerName = o.Player.DisplayName
			tx.PlayerTeam = o.Player.Team
			tx.PlayerPosition = o.Player.Role.String()
		}
		txs = append(txs, tx)
	}
	return txs
}

// Register writes a transaction to the backend. Validation failures
// never touch the network or the buffer. A failed write lands in the
// offline buffer and the error is still returned so the caller knows
// the record is not on the server yet. A successful write triggers a
// best-effort buffer replay.
func (s *TransactionService) Register(ctx context.Context, tx domain.Transaction) error {
	if err := validateTransaction(tx); err != nil {
		return err
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = s.now()
	}

	if err := s.backend.CreateTransaction(ctx, tx); err != nil {
		s.logger.Warn().
			Err(err).
			Str("type", string(tx.Type)).
			Str("player_id", tx.PlayerID).
			Msg("transaction write failed, buffering")
		if bufErr := s.buffer.Append(ctx, tx, s.now()); bufErr != nil {
			s.logger.Error().Err(bufErr).Msg("failed to buffer transaction")
		}
		return err
	}

	s.logger.Debug().
		Str("type", string(tx.Type)).
		Str("player_id", tx.PlayerID).
		Msg("transaction registered")

	if _, err := s.SyncBuffer(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("post-write buffer sync failed")
	}
	return nil
}

func validateTransaction(tx domain.Transaction) error {
	if !tx.Type.Valid() {
		return ErrInvalidTransaction
	}
	if tx.LeagueID == "" || tx.PlayerID == "" {
		return ErrInvalidTransaction
	}
	if tx.Type == domain.TransactionTrade && (tx.SellerUserID == "" || tx.BuyerUserID == "") {
		return ErrInvalidTransaction
	}
	if (tx.Type == domain.TransactionPurchase || tx.Type == domain.TransactionSale) && tx.UserID == "" {
		return ErrInvalidTransaction
	}
	return nil
}

// SyncBuffer replays every buffered transaction, removing entries that
// reach the backend and keeping the rest for a later attempt. Safe to
// call at any time, including with an empty buffer; concurrent calls
// are serialized.
func (s *TransactionService) SyncBuffer(ctx context.Context) (int, error) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	pending, err := s.buffer.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	s.logger.Info().Int("count", len(pending)).Msg("replaying buffered transactions")

	synced := 0
	for _, p := range pending {
		if err := s.backend.CreateTransaction(ctx, p.Transaction); err != nil {
			s.logger.Warn().
				Err(err).
				Str("player_id", p.Transaction.PlayerID).
				Time("captured_at", p.CapturedAt).
				Msg("buffered transaction replay failed, keeping for later")
			continue
		}
		if err := s.buffer.Remove(ctx, p.Transaction.PlayerID, p.CapturedAt); err != nil {
			s.logger.Error().Err(err).Str("player_id", p.Transaction.PlayerID).Msg("failed to remove replayed transaction from buffer")
			continue
		}
		synced++
	}

	remaining := len(pending) - synced
	s.logger.Info().Int("synced", synced).Int("remaining", remaining).Msg("buffer replay finished")
	return synced, nil
}

// PendingCount reports how many transactions are waiting in the buffer.
func (s *TransactionService) PendingCount(ctx context.Context) (int, error) {
	return s.buffer.Count(ctx)
}
