package roomyserver

import (
	"time"

	"github.com/castaneai/roomy"
)

// CommonConfig is shared by every binary.
type CommonConfig struct {
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"LOG_FORMAT" default:"json"`
	OTLPEndpoint string `envconfig:"OTLP_ENDPOINT"`
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type StoreConfig struct {
	Backend string `envconfig:"BACKEND" default:"memory"`
	// RedisAddr is optional, an embedded miniredis is started when it is empty.
	RedisAddr      string `envconfig:"REDIS_ADDR"`
	RedisKeyPrefix string `envconfig:"REDIS_KEY_PREFIX" default:"roomy:"`
}

type RoomConfig struct {
	ListenPort string           `envconfig:"PORT" default:"8081"`
	NameLog    string           `envconfig:"NAME_LOG" default:"room.txt"`
	SlotPolicy roomy.SlotPolicy `envconfig:"SLOT_POLICY" default:"exact"`
	StoreConfig
}

type ActivityConfig struct {
	ListenPort string `envconfig:"PORT" default:"8082"`
	NameLog    string `envconfig:"NAME_LOG" default:"activities.txt"`
	StoreConfig
}

const (
	UpstreamProtocolText    = "text"
	UpstreamProtocolConnect = "connect"
)

type ReservationConfig struct {
	ListenPort         string        `envconfig:"PORT" default:"8080"`
	RoomServiceURL     string        `envconfig:"ROOM_SERVICE_URL" default:"http://localhost:8081"`
	ActivityServiceURL string        `envconfig:"ACTIVITY_SERVICE_URL" default:"http://localhost:8082"`
	UpstreamProtocol   string        `envconfig:"UPSTREAM_PROTOCOL" default:"text"`
	CallTimeout        time.Duration `envconfig:"CALL_TIMEOUT" default:"2s"`
	MaxRetries         int           `envconfig:"MAX_RETRIES" default:"2"`
	StoreConfig
}
