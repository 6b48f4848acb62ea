package models

// MConfig Structure
type MConfig struct {
	Name      string           `yaml:"name"`
	Host      string           `yaml:"host"`
	Port      int              `yaml:"port"`
	LogLevel  string           `yaml:"log_level"`
	GrpcHost  string           `yaml:"grpc_host"`
	GrpcPort  int              `yaml:"grpc_port"`
	Feed      MFeedConfig      `yaml:"feed"`
	Storage   MStorageConfig   `yaml:"storage"`
	Dashboard MDashboardConfig `yaml:"dashboard"`
}

type MFeedConfig struct {
	Transport           string `yaml:"transport"` // "websocket" or "redis"
	URL                 string `yaml:"url"`
	Path                string `yaml:"path"`
	RedisAddr           string `yaml:"redis_addr"`
	RedisPassword       string `yaml:"redis_password"`
	RedisDB             int    `yaml:"redis_db"`
	RedisPrefix         string `yaml:"redis_prefix"`
	ReconnectMinSeconds int    `yaml:"reconnect_min_seconds"`
	ReconnectMaxSeconds int    `yaml:"reconnect_max_seconds"`

	// Outbound proxies for the websocket transport, rotated on reconnect.
	Proxies []string `yaml:"proxies"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	HistoryTable       string `yaml:"history_table"`
	HistoryWindow      int    `yaml:"history_window"`
	RetentionDays      int    `yaml:"retention_days"` // 0 keeps everything
}

type MDashboardConfig struct {
	DefaultTab       string   `yaml:"default_tab"`
	DomesticSuffixes []string `yaml:"domestic_suffixes"`
	DomesticCountry  string   `yaml:"domestic_country"`
	DomesticMIC      string   `yaml:"domestic_mic"`
	GlobalMIC        string   `yaml:"global_mic"`
}

// GetLogLevel lets the logger read the level without importing config.
func (c *MConfig) GetLogLevel() string {
	if c == nil {
		return ""
	}
	return c.LogLevel
}
