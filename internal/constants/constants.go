package constants

import "time"

const (
	BackendTimeout = 10 * time.Second
	RequestTimeout = 30 * time.Second
)

const (
	ActivityPollInterval = 30 * time.Second
	BufferSyncSchedule   = "@every 1m"
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// TeamPlayerLimit caps how many players from one real-world team a
	// roster may hold.
	TeamPlayerLimit = 2

	// DefaultPlayerPrice is assumed when a backend record carries no
	// price, in M€.
	DefaultPlayerPrice = 5
)

// PlaceholderImageURL is used when no image field survives
// normalization.
const PlaceholderImageURL = "https://ddragon.leagueoflegends.com/cdn/img/champion/splash/Ryze_0.jpg"
