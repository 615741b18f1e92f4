package config

// DBConfig 数据库配置
type DBConfig struct {
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Name     string `yaml:"name" env:"DB_NAME"`
	MaxConns int32  `yaml:"max_conns" env:"DB_MAX_CONNS"`
	// SlowQueryMS 慢查询阈值（毫秒），0 表示默认 100ms
	SlowQueryMS int `yaml:"slow_query_ms" env:"DB_SLOW_QUERY_MS"`
}

// StoreConfig 选择存储实现：postgres 或 sqlite
type StoreConfig struct {
	Driver     string `yaml:"driver" env:"STORE_DRIVER"`
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`
}

// MQConfig 消息队列配置
type MQConfig struct {
	URL     string `yaml:"url" env:"MQ_URL"`
	Enabled bool   `yaml:"enabled" env:"MQ_ENABLED"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret string `yaml:"secret" env:"JWT_SECRET"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port string `yaml:"port" env:"SERVER_PORT"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}
