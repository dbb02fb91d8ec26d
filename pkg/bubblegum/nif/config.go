package nif

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/code-payments/code-bubblegum/pkg/cache"
)

const (
	envPrefix     = "BUBBLEGUM"
	configPathEnv = envPrefix + "_CONFIG"
)

const (
	devnetEndpoint  = "https://api.devnet.solana.com"
	testnetEndpoint = "https://api.testnet.solana.com"
	mainnetEndpoint = "https://api.mainnet-beta.solana.com"
)

var clusterEndpoints = map[string]string{
	"devnet":       devnetEndpoint,
	"testnet":      testnetEndpoint,
	"mainnet":      mainnetEndpoint,
	"mainnet-beta": mainnetEndpoint,
}

// Config configures the library. Every key can be set through a
// BUBBLEGUM_<KEY> environment variable or a config file named by
// BUBBLEGUM_CONFIG.
type Config struct {
	LogLevel string `mapstructure:"log_level"`

	AppName string `mapstructure:"app_name"`

	// RPCEndpoint is a Solana JSON-RPC URL, or one of devnet, testnet and
	// mainnet. Transactions are signed but never sent when it's empty.
	RPCEndpoint string `mapstructure:"rpc_endpoint"`

	// DASEndpoint is a Digital Asset Standard capable JSON-RPC URL used to
	// look up leaf state for transfers. Transfers are built against
	// placeholder leaf state when it's empty.
	DASEndpoint string `mapstructure:"das_endpoint"`

	Commitment string `mapstructure:"commitment"`

	CacheCapacity     int           `mapstructure:"cache_capacity"`
	AssetTreeCacheTTL time.Duration `mapstructure:"asset_tree_cache_ttl"`

	// SubmitRateLimit is the number of submissions per second. Zero disables
	// limiting.
	SubmitRateLimit float64 `mapstructure:"submit_rate_limit"`

	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`
}

var defaultConfig = Config{
	LogLevel: "info",
	AppName:  "bubblegum",

	Commitment: "confirmed",

	CacheCapacity:     cache.DefaultCapacity,
	AssetTreeCacheTTL: 10 * time.Minute,
}

var configKeys = []string{
	"log_level",
	"app_name",
	"rpc_endpoint",
	"das_endpoint",
	"commitment",
	"cache_capacity",
	"asset_tree_cache_ttl",
	"submit_rate_limit",
	"new_relic_license_key",
}

// LoadConfig reads the configuration from the environment and the optional
// config file.
func LoadConfig() (*Config, error) {
	v := viper.New()
	for _, key := range configKeys {
		_ = v.BindEnv(key, envPrefix+"_"+strings.ToUpper(key))
	}

	if path := os.Getenv(configPathEnv); len(path) > 0 {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to load config from %s", path)
		}
	}

	config := defaultConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if config.CacheCapacity <= 0 {
		return nil, errors.Errorf("invalid cache capacity: %d", config.CacheCapacity)
	}
	if config.AssetTreeCacheTTL <= 0 {
		return nil, errors.Errorf("invalid asset tree cache ttl: %s", config.AssetTreeCacheTTL)
	}
	if config.SubmitRateLimit < 0 {
		return nil, errors.Errorf("invalid submit rate limit: %f", config.SubmitRateLimit)
	}

	return &config, nil
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	config := defaultConfig
	return &config
}

// rpcEndpoint resolves cluster names to their public RPC endpoints.
func (c *Config) rpcEndpoint() string {
	if endpoint, ok := clusterEndpoints[strings.ToLower(c.RPCEndpoint)]; ok {
		return endpoint
	}
	return c.RPCEndpoint
}
