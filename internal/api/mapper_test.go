package api

import (
	"encoding/json"
	"testing"
	"time"

	"fantasy-market/internal/constants"
	"fantasy-market/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTime(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return parsed
}

func TestNormalizePlayerNil(t *testing.T) {
	assert.Nil(t, NormalizePlayer(nil))
}

func TestNormalizePlayerFieldPrecedence(t *testing.T) {
	raw := &RawPlayer{
		ID:              "p1",
		Name:            "real name",
		SummonerName:    "Caps",
		Role:            "MID",
		Position:        "top",
		Team:            "G2",
		Image:           "img",
		ImageURL:        "imgurl",
		ProfilePhotoURL: "photo",
		Price:           9,
	}

	p := NormalizePlayer(raw)
	require.NotNil(t, p)
	assert.Equal(t, "Caps", p.DisplayName, "summonerName wins over name")
	assert.Equal(t, domain.RoleMid, p.Role, "role wins over position, lower-cased")
	assert.Equal(t, "imgurl", p.ImageURL, "imageUrl wins over image and profilePhotoUrl")
	assert.Equal(t, float64(9), p.Price)
}

func TestNormalizePlayerFallbacks(t *testing.T) {
	p := NormalizePlayer(&RawPlayer{
		ID:       "p2",
		Name:     "BrokenBlade",
		Position: "TOP",
		TeamName: "G2",
	})
	require.NotNil(t, p)
	assert.Equal(t, "BrokenBlade", p.DisplayName)
	assert.Equal(t, domain.RoleTop, p.Role)
	assert.Equal(t, "G2", p.Team)
	assert.Equal(t, constants.PlaceholderImageURL, p.ImageURL)
	assert.Equal(t, float64(constants.DefaultPlayerPrice), p.Price)
}

func TestNormalizePlayerImagePrecedence(t *testing.T) {
	p := NormalizePlayer(&RawPlayer{ID: "p1", Name: "x", Image: "img", ProfilePhotoURL: "photo"})
	assert.Equal(t, "img", p.ImageURL)

	p = NormalizePlayer(&RawPlayer{ID: "p1", Name: "x", ProfilePhotoURL: "photo"})
	assert.Equal(t, "photo", p.ImageURL)
}

func TestNormalizePlayerCanonicalizesRoleAlias(t *testing.T) {
	p := NormalizePlayer(&RawPlayer{ID: "p3", Name: "Hans Sama", Role: "ADC"})
	assert.Equal(t, domain.RoleBottom, p.Role, "the adc alias is never stored")
}

func TestNormalizePlayerIdempotent(t *testing.T) {
	first := NormalizePlayer(&RawPlayer{
		ID:           "p1",
		SummonerName: "Caps",
		Role:         "mid",
		Team:         "G2",
		ImageURL:     "imgurl",
		Price:        9,
	})
	require.NotNil(t, first)

	again := NormalizePlayer(&RawPlayer{
		ID:           first.ID,
		SummonerName: first.DisplayName,
		Role:         first.Role.String(),
		Team:         first.Team,
		ImageURL:     first.ImageURL,
		Price:        first.Price,
	})
	assert.Equal(t, first, again)
}

func TestUserRefUnmarshalBothShapes(t *testing.T) {
	var ref UserRef
	require.NoError(t, json.Unmarshal([]byte(`"a1a1a1a1a1a1a1a1a1a1a1a1"`), &ref))
	assert.Equal(t, "a1a1a1a1a1a1a1a1a1a1a1a1", ref.ID)
	assert.Empty(t, ref.Username)

	require.NoError(t, json.Unmarshal([]byte(`{"_id":"b2b2","username":"rival"}`), &ref))
	assert.Equal(t, "b2b2", ref.ID)
	assert.Equal(t, "rival", ref.Username)
}

func TestNormalizeOfferTakesPlayerIDFromEmbeddedPlayer(t *testing.T) {
	offer := NormalizeOffer(&RawOffer{
		ID:     "o1",
		Status: "pending",
		Player: &RawPlayer{ID: "p1", Name: "Caps"},
	})
	require.NotNil(t, offer)
	assert.Equal(t, "p1", offer.PlayerID)
	assert.Equal(t, domain.OfferPending, offer.Status)
	require.NotNil(t, offer.Player)
	assert.Equal(t, "Caps", offer.Player.DisplayName)
}

func TestNormalizeTransactionTimestampPrecedence(t *testing.T) {
	stamp := parseTime(t, "2024-03-01T10:00:00Z")
	created := parseTime(t, "2024-02-01T10:00:00Z")

	tx := NormalizeTransaction(RawTransaction{Type: "purchase", Timestamp: &stamp, CreatedAt: &created})
	assert.Equal(t, stamp, tx.Timestamp, "timestamp wins over createdAt")

	tx = NormalizeTransaction(RawTransaction{Type: "purchase", CreatedAt: &created})
	assert.Equal(t, created, tx.Timestamp)
}
