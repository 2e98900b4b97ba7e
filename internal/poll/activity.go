package poll

import (
	"context"
	"time"

	"fantasy-market/internal/service"
	"fantasy-market/internal/session"
	"fantasy-market/internal/store"
)

// NewActivityFetch builds the poll cycle for the activity feed: fetch
// the selected league's transaction history and snapshot it. With no
// league selected the cycle is a no-op.
func NewActivityFetch(transactions *service.TransactionService, sess *session.Session, activity *store.ActivityStore) FetchFunc {
	return func(ctx context.Context) error {
		leagueID := sess.Get().LeagueID
		if leagueID == "" {
			return nil
		}

		txs := transactions.History(ctx, leagueID)
		activity.Set(leagueID, txs, time.Now())
		return nil
	}
}
