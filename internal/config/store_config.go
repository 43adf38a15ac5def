package config

type StoreBackend string

const (
	StoreBackendFile   StoreBackend = "file"
	StoreBackendSQLite StoreBackend = "sqlite"
	StoreBackendRedis  StoreBackend = "redis"
	StoreBackendMemory StoreBackend = "memory"
)

type StoreConfig interface {
	GetStoreBackend() StoreBackend
	GetStorePath() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKey() string
}

type Store struct {
	Backend       StoreBackend `env:"SGO_STORE_BACKEND" envDefault:"file"`
	Path          string       `env:"SGO_STORE_PATH" envDefault:"./data/tokens.json"`
	RedisAddr     string       `env:"SGO_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string       `env:"SGO_REDIS_PASSWORD"`
	RedisDB       int          `env:"SGO_REDIS_DB" envDefault:"0"`
	RedisKey      string       `env:"SGO_REDIS_KEY" envDefault:"sgoconnect:tokens"`
}

var _ StoreConfig = Store{}

func (s Store) GetStoreBackend() StoreBackend {
	return s.Backend
}

// GetStorePath is the file path for the file backend and the database path for sqlite.
func (s Store) GetStorePath() string {
	return s.Path
}

func (s Store) GetRedisAddr() string {
	return s.RedisAddr
}

func (s Store) GetRedisPassword() string {
	return s.RedisPassword
}

func (s Store) GetRedisDB() int {
	return s.RedisDB
}

func (s Store) GetRedisKey() string {
	return s.RedisKey
}
