package fx

import (
	"fantasy-market/internal/api"
	"fantasy-market/internal/config"
	"fantasy-market/internal/database"
	"fantasy-market/internal/logger"
	"fantasy-market/internal/poll"
	"fantasy-market/internal/repository"
	"fantasy-market/internal/server"
	"fantasy-market/internal/service"
	"fantasy-market/internal/session"
	"fantasy-market/internal/store"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideSession(cfg *config.Config, log zerolog.Logger) *session.Session {
	sess := session.New(log)
	sess.Set(session.State{
		Token:    cfg.BackendToken,
		UserID:   cfg.UserID,
		Username: cfg.Username,
		LeagueID: cfg.LeagueID,
	})
	return sess
}

func ProvideBackend(client *api.Client) service.Backend {
	return client
}

func ProvideBuffer(repo *repository.BufferRepository) service.TransactionBuffer {
	return repo
}

func ProvideActivityPoller(
	cfg *config.Config,
	transactions *service.TransactionService,
	sess *session.Session,
	activity *store.ActivityStore,
	log zerolog.Logger,
) *poll.Poller {
	fetch := poll.NewActivityFetch(transactions, sess, activity)
	return poll.New("activity", cfg.PollInterval, fetch, log)
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	fx.Provide(ProvideSession),
	// backend client
	fx.Provide(api.NewClient),
	fx.Provide(ProvideBackend),
	// stores
	fx.Provide(store.NewOwnerStore),
	fx.Provide(store.NewActivityStore),
	// repos
	fx.Provide(repository.NewBufferRepository),
	fx.Provide(ProvideBuffer),
	// svc
	fx.Provide(service.NewTransactionService),
	fx.Provide(service.NewMarketService),
	fx.Provide(service.NewOfferService),
	// poller + server
	fx.Provide(ProvideActivityPoller),
	fx.Provide(server.NewGateway),
)
