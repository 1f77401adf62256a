package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	Session    SessionConfig
	Placement  PlacementConfig
	Camera     CameraConfig
	Label      LabelConfig
	Catalog    CatalogConfig
	Monitoring MonitoringConfig
}

type ServerConfig struct {
	Port string
	Env  string
	Host string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	LocationPerMin       int
	SessionsPerIPPerHour int
	RequestsPerMinute    int
}

type SessionConfig struct {
	IdleTTLMinutes   int
	ReportTTLMinutes int
	QueueSize        int
}

type PlacementConfig struct {
	ScaleNumerator      float64
	MinScale            float64
	MaxScale            float64
	MinDistanceMeters   float64
	Alignment           string
	Transition          string
	InterpolationFactor float64
}

type CameraConfig struct {
	FieldOfView float64
	Aspect      float64
	Near        float64
	Far         float64
}

type LabelConfig struct {
	ImageSize int
	PlaneSize float64
	OffsetY   float64
}

type CatalogConfig struct {
	GeohashPrecision int
}

type MonitoringConfig struct {
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
			Host: getEnv("HOST", "0.0.0.0"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			LocationPerMin:       getEnvAsInt("RATE_LIMIT_LOCATION_PER_MIN", 60),
			SessionsPerIPPerHour: getEnvAsInt("RATE_LIMIT_SESSIONS_PER_IP_PER_HOUR", 10),
			RequestsPerMinute:    getEnvAsInt("RATE_LIMIT_REQUESTS_PER_MIN", 600),
		},
		Session: SessionConfig{
			IdleTTLMinutes:   getEnvAsInt("SESSION_IDLE_TTL_MINUTES", 30),
			ReportTTLMinutes: getEnvAsInt("REPORT_TTL_MINUTES", 10),
			QueueSize:        getEnvAsInt("SESSION_QUEUE_SIZE", 64),
		},
		Placement: PlacementConfig{
			ScaleNumerator:      getEnvAsFloat("PLACEMENT_SCALE_NUMERATOR", 1000),
			MinScale:            getEnvAsFloat("PLACEMENT_MIN_SCALE", 1.5),
			MaxScale:            getEnvAsFloat("PLACEMENT_MAX_SCALE", 3),
			MinDistanceMeters:   getEnvAsFloat("PLACEMENT_MIN_DISTANCE_METERS", 0.01),
			Alignment:           getEnv("PLACEMENT_ALIGNMENT", "gravity_and_heading"),
			Transition:          getEnv("PLACEMENT_TRANSITION", "static"),
			InterpolationFactor: getEnvAsFloat("PLACEMENT_INTERPOLATION_FACTOR", 0.25),
		},
		Camera: CameraConfig{
			FieldOfView: getEnvAsFloat("CAMERA_FOV_DEGREES", 60),
			Aspect:      getEnvAsFloat("CAMERA_ASPECT", 0.5625),
			Near:        getEnvAsFloat("CAMERA_NEAR", 0.001),
			Far:         getEnvAsFloat("CAMERA_FAR", 10000),
		},
		Label: LabelConfig{
			ImageSize: getEnvAsInt("LABEL_IMAGE_SIZE", 100),
			PlaneSize: getEnvAsFloat("LABEL_PLANE_SIZE", 10),
			OffsetY:   getEnvAsFloat("LABEL_OFFSET_Y", 4),
		},
		Catalog: CatalogConfig{
			GeohashPrecision: getEnvAsInt("GEOHASH_PRECISION", 7),
		},
		Monitoring: MonitoringConfig{
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.Placement.MinScale > c.Placement.MaxScale {
		return fmt.Errorf("placement min scale %.2f exceeds max scale %.2f", c.Placement.MinScale, c.Placement.MaxScale)
	}
	if c.Placement.ScaleNumerator <= 0 {
		return fmt.Errorf("placement scale numerator must be positive")
	}
	switch c.Placement.Alignment {
	case "gravity_and_heading", "gravity":
	default:
		return fmt.Errorf("unknown placement alignment %q", c.Placement.Alignment)
	}
	switch c.Placement.Transition {
	case "static", "interpolated":
	default:
		return fmt.Errorf("unknown placement transition %q", c.Placement.Transition)
	}
	if c.Catalog.GeohashPrecision < 1 || c.Catalog.GeohashPrecision > 12 {
		return fmt.Errorf("geohash precision must be between 1 and 12")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

func (c *Config) IdleTTL() time.Duration {
	return time.Duration(c.Session.IdleTTLMinutes) * time.Minute
}

func (c *Config) ReportTTL() time.Duration {
	return time.Duration(c.Session.ReportTTLMinutes) * time.Minute
}
