package internal

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/tuannm99/novaingest/client"
)

type Config struct {
	AppName string `mapstructure:"app_name"`

	Client struct {
		Endpoint    string        `mapstructure:"endpoint"`
		Database    string        `mapstructure:"database"`
		Compress    bool          `mapstructure:"compress"`
		DialTimeout time.Duration `mapstructure:"dial_timeout"`
		RWTimeout   time.Duration `mapstructure:"rw_timeout"`
	} `mapstructure:"client"`

	Server struct {
		Addr        string `mapstructure:"addr"`
		MetricsAddr string `mapstructure:"metrics_addr"`
		DataDir     string `mapstructure:"data_dir"`
		InMemory    bool   `mapstructure:"in_memory"`
		Compress    bool   `mapstructure:"compress"`
		Debug       bool   `mapstructure:"debug"`
	} `mapstructure:"server"`
}

// env names are fixed rather than derived from the key path
var envBindings = map[string]string{
	"client.endpoint":     "NOVAINGEST_ENDPOINT",
	"client.database":     "NOVAINGEST_DBNAME",
	"client.compress":     "NOVAINGEST_COMPRESS",
	"server.addr":         "NOVAINGEST_SERVER_ADDR",
	"server.data_dir":     "NOVAINGEST_DATA_DIR",
	"server.metrics_addr": "NOVAINGEST_METRICS_ADDR",
	"server.compress":     "NOVAINGEST_COMPRESS",
	"server.debug":        "NOVAINGEST_DEBUG",
}

// LoadConfig reads defaults, then the YAML file at path (skipped when path
// is empty), then the NOVAINGEST_* environment.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("app_name", "novaingest")
	v.SetDefault("client.endpoint", client.DefaultEndpoint)
	v.SetDefault("client.database", client.DefaultDatabase)
	v.SetDefault("client.compress", false)
	v.SetDefault("client.dial_timeout", 5*time.Second)
	v.SetDefault("client.rw_timeout", 30*time.Second)
	v.SetDefault("server.addr", ":4001")
	v.SetDefault("server.metrics_addr", "")
	v.SetDefault("server.data_dir", "./data")
	v.SetDefault("server.in_memory", false)
	v.SetDefault("server.compress", false)
	v.SetDefault("server.debug", false)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ClientConfig is the part of cfg handed to client.Dial.
func (c *Config) ClientConfig() client.Config {
	return client.Config{
		Endpoint:    c.Client.Endpoint,
		Database:    c.Client.Database,
		DialTimeout: c.Client.DialTimeout,
		RWTimeout:   c.Client.RWTimeout,
		Compress:    c.Client.Compress,
	}
}
