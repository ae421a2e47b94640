package config

// Provider API keys injected at build time. They are used when neither the
// config file nor the environment supplies a key.
//
// Build with:
//
//	go build -ldflags "-X 'github.com/slipstream/metascrape/internal/config.EmbeddedTMDBKey=xxx' \
//	                   -X 'github.com/slipstream/metascrape/internal/config.EmbeddedFanartTVKey=yyy'"
var (
	EmbeddedTMDBKey     string
	EmbeddedOMDBKey     string
	EmbeddedFanartTVKey string
)

// Version is set at build time with -X 'github.com/slipstream/metascrape/internal/config.Version=v1.2.3'.
var Version = "dev"
