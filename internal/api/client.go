package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fantasy-market/internal/config"
	"fantasy-market/internal/constants"
	"fantasy-market/internal/domain"
	"fantasy-market/internal/session"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// Error is a backend rejection: a response we did receive, with the
// status code and the server's own message. The message is surfaced to
// the user verbatim when present.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend error %d", e.StatusCode)
}

// Client talks to the fantasy-league backend. Every request carries the
// session bearer token; a 401 clears the session.
type Client struct {
	baseURL string
	session *session.Session
	client  *fasthttp.Client
	logger  zerolog.Logger
}

func NewClient(cfg *config.Config, sess *session.Session, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: cfg.BackendURL,
		session: sess,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.BackendTimeout,
			WriteTimeout:        constants.BackendTimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

func (c *Client) GetPlayers(ctx context.Context) ([]domain.Player, error) {
	raw, err := doRequest[[]RawPlayer](ctx, c, fasthttp.MethodGet, "/api/players", nil)
	if err != nil {
		return nil, err
	}
	return normalizePlayers(*raw), nil
}

func (c *Client) GetUserPlayers(ctx context.Context, leagueID string) ([]domain.Player, error) {
	raw, err := doRequest[[]RawPlayer](ctx, c, fasthttp.MethodGet, "/api/players/user/"+leagueID, nil)
	if err != nil {
		return nil, err
	}
	return normalizePlayers(*raw), nil
}

type BuyResponse struct {
	Price      float64 `json:"price"`
	NewBalance float64 `json:"newBalance"`
}

func (c *Client) BuyPlayer(ctx context.Context, playerID, leagueID string, position domain.Role) (*BuyResponse, error) {
	body := map[string]any{
		"playerId": playerID,
		"leagueId": leagueID,
		"position": position.String(),
	}
	return doRequest[BuyResponse](ctx, c, fasthttp.MethodPost, "/api/players/buy", body)
}

type SellResponse struct {
	NewBalance      float64 `json:"newBalance"`
	CancelledOffers int     `json:"cancelledOffers"`
}

func (c *Client) SellPlayerToMarket(ctx context.Context, playerID, leagueID string) (*SellResponse, error) {
	body := map[string]any{
		"playerId": playerID,
		"leagueId": leagueID,
	}
	return doRequest[SellResponse](ctx, c, fasthttp.MethodPost, "/api/players/sell/market", body)
}

func (c *Client) CreateOffer(ctx context.Context, playerID, leagueID, targetUserID string, price float64) (*domain.Offer, error) {
	body := map[string]any{
		"playerId":     playerID,
		"leagueId":     leagueID,
		"targetUserId": targetUserID,
		"price":        price,
	}
	raw, err := doRequest[RawOffer](ctx, c, fasthttp.MethodPost, "/api/players/sell/offer", body)
	if err != nil {
		return nil, err
	}
	return NormalizeOffer(raw), nil
}

func (c *Client) GetPendingOffers(ctx context.Context, leagueID string) (*domain.OfferLists, error) {
	raw, err := doRequest[rawOfferLists](ctx, c, fasthttp.MethodGet, "/api/players/offers/"+leagueID, nil)
	if err != nil {
		return nil, err
	}
	return &domain.OfferLists{
		Incoming: normalizeOffers(raw.Incoming),
		Outgoing: normalizeOffers(raw.Outgoing),
	}, nil
}

func (c *Client) CountPendingOffers(ctx context.Context, leagueID string) (*domain.OfferCounts, error) {
	return doRequest[domain.OfferCounts](ctx, c, fasthttp.MethodGet, "/api/players/offers/"+leagueID+"/count", nil)
}

func (c *Client) AcceptOffer(ctx context.Context, offerID string) error {
	_, err := doRequest[json.RawMessage](ctx, c, fasthttp.MethodPost, "/api/players/offer/accept/"+offerID, nil)
	return err
}

func (c *Client) RejectOffer(ctx context.Context, offerID string) error {
	_, err := doRequest[json.RawMessage](ctx, c, fasthttp.MethodPost, "/api/players/offer/reject/"+offerID, nil)
	return err
}

func (c *Client) GetPlayerOwners(ctx context.Context, leagueID string) ([]domain.Owner, error) {
	owners, err := doRequest[[]domain.Owner](ctx, c, fasthttp.MethodGet, "/api/players/owners/"+leagueID, nil)
	if err != nil {
		return nil, err
	}
	return *owners, nil
}

func (c *Client) GetTransactions(ctx context.Context, leagueID string) ([]domain.Transaction, error) {
	raw, err := doRequest[[]RawTransaction](ctx, c, fasthttp.MethodGet, "/api/transactions/"+leagueID, nil)
	if err != nil {
		return nil, err
	}
	txs := make([]domain.Transaction, 0, len(*raw))
	for _, r := range *raw {
		txs = append(txs, NormalizeTransaction(r))
	}
	return txs, nil
}

func (c *Client) CreateTransaction(ctx context.Context, tx domain.Transaction) error {
	_, err := doRequest[json.RawMessage](ctx, c, fasthttp.MethodPost, "/api/transactions", tx)
	return err
}

type LeagueAccount struct {
	Money float64 `json:"money"`
}

func (c *Client) GetUserLeagueData(ctx context.Context, leagueID string) (*LeagueAccount, error) {
	return doRequest[LeagueAccount](ctx, c, fasthttp.MethodGet, "/api/user-league/"+leagueID, nil)
}

func doRequest[T any](ctx context.Context, client *Client, method, path string, body any) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(client.baseURL + path)
	req.Header.SetMethod(method)
	if token := client.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	status := resp.StatusCode()
	if status == fasthttp.StatusUnauthorized {
		client.logger.Warn().Str("path", path).Msg("unauthorized response, clearing session")
		client.session.Clear()
	}
	if status < 200 || status > 299 {
		return nil, &Error{StatusCode: status, Message: extractMessage(resp.Body())}
	}

	var result T
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &result); err != nil {
			return nil, fmt.Errorf("malformed response body: %w", err)
		}
	}
	return &result, nil
}

func extractMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}
