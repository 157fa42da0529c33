package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Minio    MinioConfig    `yaml:"minio"`
	Mineru   MineruConfig   `yaml:"mineru"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	Store    StoreConfig    `yaml:"store"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Models   ModelsConfig   `yaml:"models"`
	Chat     ChatConfig     `yaml:"chat"`
	MCP      MCPConfig      `yaml:"mcp"`
	Users    []User         `yaml:"users"`
}

type ServerConfig struct {
	Port        int `yaml:"port"`
	MaxUploadMB int `yaml:"max_upload_mb"`
	RateLimit   int `yaml:"rate_limit"` // requests per minute per client
}

type MinioConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	ExpireDays int    `yaml:"expire_days"`
}

type MineruConfig struct {
	APIURL              string `yaml:"api_url"`
	APIToken            string `yaml:"api_token"`
	ModelVersion        string `yaml:"model_version"`
	CallbackURL         string `yaml:"callback_url"`
	Seed                string `yaml:"seed"`
	UID                 string `yaml:"uid"` // account UID, part of the callback checksum
	PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
	PollAttempts        int    `yaml:"poll_attempts"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type StoreConfig struct {
	MaxDocuments int `yaml:"max_documents"` // 0 = unlimited
	MaxChatTurns int `yaml:"max_chat_turns"`
}

// AnalysisConfig tunes the heuristic pipeline.
type AnalysisConfig struct {
	MinClauseLength   int  `yaml:"min_clause_length"`
	MaxClauses        int  `yaml:"max_clauses"`
	RequireNDA        bool `yaml:"require_nda"`
	MinDocumentLength int  `yaml:"min_document_length"`
}

// ModelsConfig points at a Hugging Face style inference endpoint. When
// disabled, every model-backed feature uses its heuristic fallback.
type ModelsConfig struct {
	Enabled        bool   `yaml:"enabled"`
	BaseURL        string `yaml:"base_url"`
	APIToken       string `yaml:"api_token"`
	NERModel       string `yaml:"ner_model"`
	SimplifyModel  string `yaml:"simplify_model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ChatConfig points at an OpenAI-compatible chat completions endpoint.
type ChatConfig struct {
	Enabled        bool   `yaml:"enabled"`
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	HistoryWindow  int    `yaml:"history_window"`
	MaxTokens      int    `yaml:"max_tokens"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type MCPConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"` // plain text or bcrypt hash
	Tenant   string `yaml:"tenant"`
}

var GlobalConfig *Config

// Load reads the YAML file at path, applies CLAUSEWISE_* environment
// overrides (a .env file next to the binary is honoured) and fills defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()

	GlobalConfig = &cfg
	return &cfg, nil
}

// Default returns a configuration with every default applied, for commands
// that run without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyEnv() {
	setString(&c.Auth.JWTSecret, "CLAUSEWISE_JWT_SECRET")
	setString(&c.Minio.AccessKey, "CLAUSEWISE_MINIO_ACCESS_KEY")
	setString(&c.Minio.SecretKey, "CLAUSEWISE_MINIO_SECRET_KEY")
	setString(&c.Mineru.APIToken, "CLAUSEWISE_MINERU_TOKEN")
	setString(&c.Models.APIToken, "CLAUSEWISE_HF_TOKEN")
	setString(&c.Chat.APIKey, "CLAUSEWISE_CHAT_API_KEY")
	setString(&c.Log.Level, "CLAUSEWISE_LOG_LEVEL")
	if v := os.Getenv("CLAUSEWISE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 20
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 100
	}
	if c.Minio.ExpireDays == 0 {
		c.Minio.ExpireDays = 7
	}
	if c.Auth.TokenExpireHours == 0 {
		c.Auth.TokenExpireHours = 24
	}
	if c.Mineru.ModelVersion == "" {
		c.Mineru.ModelVersion = "vlm"
	}
	if c.Mineru.PollIntervalSeconds == 0 {
		c.Mineru.PollIntervalSeconds = 5
	}
	if c.Mineru.PollAttempts == 0 {
		c.Mineru.PollAttempts = 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Store.MaxDocuments == 0 {
		c.Store.MaxDocuments = 100
	}
	if c.Store.MaxChatTurns == 0 {
		c.Store.MaxChatTurns = 50
	}
	if c.Analysis.MinClauseLength == 0 {
		c.Analysis.MinClauseLength = 20
	}
	if c.Analysis.MaxClauses == 0 {
		c.Analysis.MaxClauses = 200
	}
	if c.Analysis.MinDocumentLength == 0 {
		c.Analysis.MinDocumentLength = 50
	}
	if c.Models.BaseURL == "" {
		c.Models.BaseURL = "https://api-inference.huggingface.co/models"
	}
	if c.Models.NERModel == "" {
		c.Models.NERModel = "dslim/bert-base-NER"
	}
	if c.Models.SimplifyModel == "" {
		c.Models.SimplifyModel = "mrm8488/t5-small-finetuned-text-simplification"
	}
	if c.Models.TimeoutSeconds == 0 {
		c.Models.TimeoutSeconds = 60
	}
	if c.Chat.HistoryWindow == 0 {
		c.Chat.HistoryWindow = 10
	}
	if c.Chat.MaxTokens == 0 {
		c.Chat.MaxTokens = 512
	}
	if c.Chat.TimeoutSeconds == 0 {
		c.Chat.TimeoutSeconds = 120
	}
	if c.MCP.Name == "" {
		c.MCP.Name = "clausewise"
	}
	if c.MCP.Version == "" {
		c.MCP.Version = "1.0.0"
	}
}

// FindUser finds a user by username
func (c *Config) FindUser(username string) *User {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}
