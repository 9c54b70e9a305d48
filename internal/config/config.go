package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"gopkg.in/yaml.v3"

	"github.com/zhouzirui/newsmate/internal/model/chat"
)

// Transport names accepted by NEWSMATE_TRANSPORT.
const (
	TransportHTTP      = "http"
	TransportWebSocket = "ws"
)

// Config aggregates every setting of the client and the development backend.
type Config struct {
	Server  ServerConfig
	Client  ClientConfig
	Logging LoggingConfig
	AI      AIConfig
}

// Load reads the optional YAML file named by NEWSMATE_CONFIG, then applies
// environment variables on top of it.
func Load() (*Config, error) {
	file, err := loadFile(os.Getenv("NEWSMATE_CONFIG"))
	if err != nil {
		return nil, err
	}

	server, err := loadServerConfig(file.Server)
	if err != nil {
		return nil, err
	}

	client, err := loadClientConfig(file.Client)
	if err != nil {
		return nil, err
	}

	logging, err := loadLoggingConfig(file.Logging)
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Client: client, Logging: logging, AI: ai}, nil
}

// fileConfig mirrors the YAML layout. Every value is a default that the
// matching environment variable overrides.
type fileConfig struct {
	Server  serverFile  `yaml:"server"`
	Client  clientFile  `yaml:"client"`
	Logging loggingFile `yaml:"logging"`
}

type serverFile struct {
	Port string `yaml:"port"`
}

type clientFile struct {
	BaseURL            string `yaml:"base_url"`
	WebSocketURL       string `yaml:"ws_url"`
	SessionID          string `yaml:"session_id"`
	Transport          string `yaml:"transport"`
	ResponseWarning    string `yaml:"response_warning"`
	HTTPTimeout        string `yaml:"http_timeout"`
	EmptyReplyFallback string `yaml:"empty_reply_fallback"`
}

type loggingFile struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func loadFile(path string) (fileConfig, error) {
	var file fileConfig
	path = strings.TrimSpace(path)
	if path == "" {
		return file, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return file, fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return file, nil
}

// ServerConfig describes the development backend listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig(file serverFile) (ServerConfig, error) {
	port := getEnvOrDefault("PORT", orDefault(file.Port, "8080"))

	if strings.Contains(port, ":") {
		// Accept ":8080" and "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// ClientConfig describes how the terminal client reaches the API.
type ClientConfig struct {
	BaseURL            string
	WebSocketURL       string
	SessionID          string
	Transport          string
	ResponseWarning    time.Duration
	HTTPTimeout        time.Duration
	EmptyReplyFallback string
}

func loadClientConfig(file clientFile) (ClientConfig, error) {
	baseURL := strings.TrimRight(getEnvOrDefault("NEWSMATE_BASE_URL", orDefault(file.BaseURL, "http://localhost:8080")), "/")
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return ClientConfig{}, fmt.Errorf("invalid NEWSMATE_BASE_URL value %q: %w", baseURL, err)
	}

	transport := strings.ToLower(getEnvOrDefault("NEWSMATE_TRANSPORT", orDefault(file.Transport, TransportHTTP)))
	if transport != TransportHTTP && transport != TransportWebSocket {
		return ClientConfig{}, fmt.Errorf("invalid NEWSMATE_TRANSPORT value %q: want %s or %s", transport, TransportHTTP, TransportWebSocket)
	}

	warning, err := parseDurationEnv("NEWSMATE_RESPONSE_WARNING", orDefault(file.ResponseWarning, "10s"))
	if err != nil {
		return ClientConfig{}, err
	}

	timeout, err := parseDurationEnv("NEWSMATE_HTTP_TIMEOUT", orDefault(file.HTTPTimeout, "5m"))
	if err != nil {
		return ClientConfig{}, err
	}

	return ClientConfig{
		BaseURL:            baseURL,
		WebSocketURL:       getEnvOrDefault("NEWSMATE_WS_URL", orDefault(file.WebSocketURL, WebSocketURLFor(baseURL))),
		SessionID:          getEnvOrDefault("NEWSMATE_SESSION_ID", orDefault(file.SessionID, chat.DefaultSessionID)),
		Transport:          transport,
		ResponseWarning:    warning,
		HTTPTimeout:        timeout,
		EmptyReplyFallback: getEnvOrDefault("NEWSMATE_EMPTY_REPLY_FALLBACK", file.EmptyReplyFallback),
	}, nil
}

// WebSocketURLFor derives the websocket endpoint served next to baseURL.
func WebSocketURLFor(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://") + "/api/ws"
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://") + "/api/ws"
	default:
		return baseURL + "/api/ws"
	}
}

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	Level  string
	Format string
}

func loadLoggingConfig(file loggingFile) (LoggingConfig, error) {
	format := strings.ToLower(getEnvOrDefault("LOG_FORMAT", orDefault(file.Format, "console")))
	if format != "console" && format != "json" {
		return LoggingConfig{}, fmt.Errorf("invalid LOG_FORMAT value %q", format)
	}
	return LoggingConfig{
		Level:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", orDefault(file.Level, "info"))),
		Format: format,
	}, nil
}

// AIConfig describes the Ark model used by the development backend.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether enough credentials were supplied.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel creates a model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: set ARK_API_KEY and Model, or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("Model")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationEnv(key, defaultValue string) (time.Duration, error) {
	raw := getEnvOrDefault(key, defaultValue)
	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
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
