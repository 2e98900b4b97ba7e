package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"fantasy-market/internal/api"
	"fantasy-market/internal/constants"
	"fantasy-market/internal/service"
	"fantasy-market/internal/session"
	"fantasy-market/internal/store"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Gateway exposes the reconciled market state to the UI over JSON. It
// is the only HTTP surface of the process; the fantasy backend itself
// is reached through the api client.
type Gateway struct {
	market       *service.MarketService
	offers       *service.OfferService
	transactions *service.TransactionService
	activity     *store.ActivityStore
	session      *session.Session
	logger       zerolog.Logger
}

func NewGateway(
	market *service.MarketService,
	offers *service.OfferService,
	transactions *service.TransactionService,
	activity *store.ActivityStore,
	sess *session.Session,
	logger zerolog.Logger,
) *Gateway {
	return &Gateway{
		market:       market,
		offers:       offers,
		transactions: transactions,
		activity:     activity,
		session:      sess,
		logger:       logger,
	}
}

func (g *Gateway) Routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", g.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/api/market/{leagueID}", g.handleMarketView).Methods(http.MethodGet)
	r.HandleFunc("/api/market/{leagueID}/buy", g.handleBuy).Methods(http.MethodPost)
	r.HandleFunc("/api/market/{leagueID}/sell", g.handleSell).Methods(http.MethodPost)
	r.HandleFunc("/api/market/{leagueID}/offer", g.handleCreateOffer).Methods(http.MethodPost)

	r.HandleFunc("/api/offers/{leagueID}", g.handleOffers).Methods(http.MethodGet)
	r.HandleFunc("/api/offers/{leagueID}/count", g.handleOfferCounts).Methods(http.MethodGet)
	r.HandleFunc("/api/offers/{offerID}/accept", g.handleAcceptOffer).Methods(http.MethodPost)
	r.HandleFunc("/api/offers/{offerID}/reject", g.handleRejectOffer).Methods(http.MethodPost)

	r.HandleFunc("/api/transactions/{leagueID}", g.handleTransactions).Methods(http.MethodGet)
	r.HandleFunc("/api/transactions/sync", g.handleSync).Methods(http.MethodPost)
	r.HandleFunc("/api/activity/{leagueID}", g.handleActivity).Methods(http.MethodGet)

	r.HandleFunc("/api/session", g.handleSetSession).Methods(http.MethodPut)
	r.HandleFunc("/api/session", g.handleClearSession).Methods(http.MethodDelete)

	return r
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (g *Gateway) handleMarketView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	view, err := g.market.View(ctx, mux.Vars(r)["leagueID"])
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type playerRequest struct {
	PlayerID string `json:"playerId"`
}

func (g *Gateway) handleBuy(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	var req playerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := g.market.Buy(ctx, req.PlayerID, mux.Vars(r)["leagueID"])
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (g *Gateway) handleSell(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	var req playerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := g.market.Sell(ctx, req.PlayerID, mux.Vars(r)["leagueID"])
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type createOfferRequest struct {
	PlayerID     string  `json:"playerId"`
	TargetUserID string  `json:"targetUserId"`
	Price        float64 `json:"price"`
}

func (g *Gateway) handleCreateOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	var req createOfferRequest
	if !decodeBody(w, r, &req) {
		return
	}

	offer, err := g.market.CreateOffer(ctx, req.PlayerID, mux.Vars(r)["leagueID"], req.TargetUserID, req.Price)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, offer)
}

func (g *Gateway) handleOffers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	offers, err := g.offers.Pending(ctx, mux.Vars(r)["leagueID"])
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, offers)
}

func (g *Gateway) handleOfferCounts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	counts, err := g.offers.Counts(ctx, mux.Vars(r)["leagueID"])
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

type offerActionRequest struct {
	LeagueID string `json:"leagueId"`
}

func (g *Gateway) handleAcceptOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	var req offerActionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	offer, err := g.offers.Accept(ctx, mux.Vars(r)["offerID"], req.LeagueID)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, offer)
}

func (g *Gateway) handleRejectOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	var req offerActionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := g.offers.Reject(ctx, mux.Vars(r)["offerID"], req.LeagueID); err != nil {
		g.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

func (g *Gateway) handleTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	txs := g.transactions.History(ctx, mux.Vars(r)["leagueID"])
	writeJSON(w, http.StatusOK, txs)
}

func (g *Gateway) handleSync(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	synced, err := g.transactions.SyncBuffer(ctx)
	if err != nil {
		g.writeError(w, r, err)
		return
	}

	remaining, err := g.transactions.PendingCount(ctx)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"synced": synced, "remaining": remaining})
}

func (g *Gateway) handleActivity(w http.ResponseWriter, r *http.Request) {
	snap, ok := g.activity.Get(mux.Vars(r)["leagueID"])
	if !ok {
		writeJSON(w, http.StatusOK, store.ActivitySnapshot{})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type sessionRequest struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	LeagueID string `json:"leagueId"`
}

func (g *Gateway) handleSetSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	g.session.Set(session.State{
		Token:    req.Token,
		UserID:   req.UserID,
		Username: req.Username,
		LeagueID: req.LeagueID,
	})
	writeJSON(w, http.StatusOK, g.session.Get())
}

func (g *Gateway) handleClearSession(w http.ResponseWriter, r *http.Request) {
	g.session.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), constants.RequestTimeout)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return false
	}
	return true
}

// writeError maps service errors onto the gateway's status codes.
// Preflight rejections are conflicts, validation failures are
// unprocessable, backend rejections are relayed with the backend's own
// status and message, and transport failures become a generic 502 so
// the UI can show a retry-later notice.
func (g *Gateway) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var backendErr *api.Error
	switch {
	case errors.As(err, &backendErr):
		message := backendErr.Message
		if message == "" {
			message = "the server rejected the request"
		}
		writeJSON(w, backendErr.StatusCode, errorBody(message))
	case errors.Is(err, service.ErrInvalidTargetUser),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidTransaction):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	case errors.Is(err, service.ErrAlreadyOwned),
		errors.Is(err, service.ErrTeamLimitReached),
		errors.Is(err, service.ErrNotOwned),
		errors.Is(err, service.ErrNotOfferTarget):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, service.ErrPlayerNotFound),
		errors.Is(err, service.ErrOfferNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	default:
		g.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusBadGateway, errorBody("backend unavailable, please retry"))
	}
}

func errorBody(message string) map[string]string {
	return map[string]string{"message": message}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
