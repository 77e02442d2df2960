package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultSecretKey = "your-secret-key"

// Config 聚合整个服务的配置项。
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Mail     MailConfig
	Session  SessionConfig
	Security SecurityConfig
	Events   EventsConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	database, err := loadDatabaseConfig()
	if err != nil {
		return nil, err
	}

	mail, err := loadMailConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig(server.Production())
	if err != nil {
		return nil, err
	}

	security, err := loadSecurityConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:   server,
		Database: database,
		Mail:     mail,
		Session:  session,
		Security: security,
		Events:   EventsConfig{NATSURL: strings.TrimSpace(os.Getenv("NATS_URL"))},
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr        string
	Env         string
	ContentRoot string
	SiteName    string
	APIVersion  string
}

// Production reports whether the process runs with production hardening.
func (c ServerConfig) Production() bool {
	return c.Env == "production"
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3001"
	}

	cfg := ServerConfig{
		Env:         strings.ToLower(getEnvOrDefault("APP_ENV", "development")),
		ContentRoot: getEnvOrDefault("CONTENT_ROOT", "."),
		SiteName:    getEnvOrDefault("SITE_NAME", "Spring Legal Consultancy"),
		APIVersion:  getEnvOrDefault("API_VERSION", "1.0.0"),
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":3001" 或 "127.0.0.1:3001"。
		cfg.Addr = port
		return cfg, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	cfg.Addr = ":" + port
	return cfg, nil
}

// DatabaseConfig 描述投递记录的存储后端。
type DatabaseConfig struct {
	Driver string
	URL    string
}

func loadDatabaseConfig() (DatabaseConfig, error) {
	driver := strings.ToLower(getEnvOrDefault("STORE_DRIVER", "postgres"))
	switch driver {
	case "postgres", "memory":
	default:
		return DatabaseConfig{}, fmt.Errorf("invalid STORE_DRIVER value: %q", driver)
	}

	if raw := strings.TrimSpace(os.Getenv("DATABASE_URL")); raw != "" {
		return DatabaseConfig{Driver: driver, URL: raw}, nil
	}

	port := getEnvOrDefault("DB_PORT", "5432")
	if _, err := strconv.Atoi(port); err != nil {
		return DatabaseConfig{}, fmt.Errorf("invalid DB_PORT value %q: %w", port, err)
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(getEnvOrDefault("DB_HOST", "localhost"), port),
		Path:   "/" + getEnvOrDefault("DB_NAME", "spring_legal_db"),
	}
	user := getEnvOrDefault("DB_USER", "postgres")
	if password, ok := os.LookupEnv("DB_PASSWORD"); ok && password != "" {
		u.User = url.UserPassword(user, password)
	} else {
		u.User = url.User(user)
	}
	q := url.Values{}
	q.Set("sslmode", getEnvOrDefault("DB_SSLMODE", "disable"))
	u.RawQuery = q.Encode()

	return DatabaseConfig{Driver: driver, URL: u.String()}, nil
}

// MailConfig 描述通知邮件的 SMTP 传输配置。
type MailConfig struct {
	Host     string
	Port     int
	Secure   bool
	Username string
	Password string
	From     string
	To       string
}

// Enabled 表示是否提供了发送通知所需的凭证与收件人。
func (c MailConfig) Enabled() bool {
	return c.Host != "" && c.Username != "" && c.Password != "" && c.To != ""
}

func loadMailConfig() (MailConfig, error) {
	port := 587
	if override, err := parseOptionalIntEnv("SMTP_PORT"); err != nil {
		return MailConfig{}, err
	} else if override != nil {
		port = *override
	}

	secure, err := parseBoolEnv("SMTP_SECURE", false)
	if err != nil {
		return MailConfig{}, err
	}

	username := strings.TrimSpace(os.Getenv("SMTP_USERNAME"))

	return MailConfig{
		Host:     strings.TrimSpace(os.Getenv("SMTP_SERVER")),
		Port:     port,
		Secure:   secure,
		Username: username,
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     getEnvOrDefault("FROM_EMAIL", username),
		To:       strings.TrimSpace(os.Getenv("TO_EMAIL")),
	}, nil
}

// SessionConfig 描述会话存储与验证码策略。
type SessionConfig struct {
	SecretKey        string
	Store            string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	TTL              time.Duration
	SecureCookie     bool
	CaptchaSingleUse bool
}

func loadSessionConfig(production bool) (SessionConfig, error) {
	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		if production {
			return SessionConfig{}, fmt.Errorf("SECRET_KEY is required when APP_ENV=production")
		}
		secret = defaultSecretKey
	}

	store := strings.ToLower(getEnvOrDefault("SESSION_STORE", "memory"))
	switch store {
	case "memory", "redis":
	default:
		return SessionConfig{}, fmt.Errorf("invalid SESSION_STORE value: %q", store)
	}

	redisDB := 0
	if override, err := parseOptionalIntEnv("REDIS_DB"); err != nil {
		return SessionConfig{}, err
	} else if override != nil {
		redisDB = *override
	}

	ttl, err := parseDurationEnv("SESSION_TTL", 10*time.Minute)
	if err != nil {
		return SessionConfig{}, err
	}

	singleUse, err := parseBoolEnv("CAPTCHA_SINGLE_USE", false)
	if err != nil {
		return SessionConfig{}, err
	}

	return SessionConfig{
		SecretKey:        secret,
		Store:            store,
		RedisAddr:        getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          redisDB,
		TTL:              ttl,
		SecureCookie:     production,
		CaptchaSingleUse: singleUse,
	}, nil
}

// SecurityConfig 描述跨域与限流配置。
type SecurityConfig struct {
	AllowedOrigins  []string
	RateLimitWindow time.Duration
	RateLimitMax    int
	// TrustProxy 为 true 时才采信 X-Forwarded-For / X-Real-IP。
	TrustProxy bool
}

func loadSecurityConfig() (SecurityConfig, error) {
	window, err := parseDurationEnv("RATE_LIMIT_WINDOW", 15*time.Minute)
	if err != nil {
		return SecurityConfig{}, err
	}
	if window <= 0 {
		return SecurityConfig{}, fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}

	maxRequests := 1000
	if override, err := parseOptionalIntEnv("RATE_LIMIT_MAX"); err != nil {
		return SecurityConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return SecurityConfig{}, fmt.Errorf("RATE_LIMIT_MAX must be at least 1")
		}
		maxRequests = *override
	}

	trustProxy, err := parseBoolEnv("TRUST_PROXY", false)
	if err != nil {
		return SecurityConfig{}, err
	}

	return SecurityConfig{
		AllowedOrigins:  splitList(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3001")),
		RateLimitWindow: window,
		RateLimitMax:    maxRequests,
		TrustProxy:      trustProxy,
	}, nil
}

// EventsConfig 描述可选的事件总线。
type EventsConfig struct {
	NATSURL string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
