package config

import (
	"fmt"
	"os"
	"strconv"

	domainservices "recall-backend/domain/services"
)

// StorageBackend selects the durable store implementation
type StorageBackend string

const (
	StorageJSON     StorageBackend = "json"
	StorageDynamoDB StorageBackend = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Storage configuration
	Storage       StorageBackend
	DataDir       string // json backend: directory for store files
	AWSRegion     string
	DynamoDBTable string

	// Corpus configuration (external item store, read-only)
	CorpusPath string

	// Semantic index endpoint; empty disables the semantic path
	SemanticEndpoint string
	SemanticTopK     int

	// Ranking policy; weights preserved as configuration, not code
	Ranking domainservices.RankingConfig

	// Link policy
	SuggestionThreshold float64
	MaxSuggestions      int

	// Hierarchy policy
	AllowCrossProjectMoves bool

	// Authentication; empty secret disables auth
	JWTSecret string
	JWTIssuer string

	// Rate limiting
	RateLimitPerMinute int

	// Logging
	LogLevel string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	ranking := *domainservices.DefaultRankingConfig()
	ranking.ScoreThreshold = getEnvFloat("RANKING_SCORE_THRESHOLD", ranking.ScoreThreshold)
	ranking.MaxResults = getEnvInt("RANKING_MAX_RESULTS", ranking.MaxResults)
	ranking.SemanticWeight = getEnvFloat("RANKING_SEMANTIC_WEIGHT", ranking.SemanticWeight)
	ranking.ProjectWeight = getEnvFloat("RANKING_PROJECT_WEIGHT", ranking.ProjectWeight)
	ranking.CategoryWeight = getEnvFloat("RANKING_CATEGORY_WEIGHT", ranking.CategoryWeight)
	ranking.TagOverlapWeight = getEnvFloat("RANKING_TAG_WEIGHT", ranking.TagOverlapWeight)
	ranking.KeywordDensityWeight = getEnvFloat("RANKING_KEYWORD_WEIGHT", ranking.KeywordDensityWeight)
	ranking.TechnicalWeight = getEnvFloat("RANKING_TECHNICAL_WEIGHT", ranking.TechnicalWeight)

	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		Storage:       StorageBackend(getEnv("STORAGE_BACKEND", string(StorageJSON))),
		DataDir:       getEnv("DATA_DIR", "./data"),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("DYNAMODB_TABLE", "recall"),

		CorpusPath: getEnv("CORPUS_PATH", "./data/items.json"),

		SemanticEndpoint: getEnv("SEMANTIC_ENDPOINT", ""),
		SemanticTopK:     getEnvInt("SEMANTIC_TOP_K", 10),

		Ranking: ranking,

		SuggestionThreshold: getEnvFloat("SUGGESTION_THRESHOLD", 0.3),
		MaxSuggestions:      getEnvInt("MAX_SUGGESTIONS", 5),

		AllowCrossProjectMoves: getEnvBool("ALLOW_CROSS_PROJECT_MOVES", false),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "recall-backend"),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration consistency
func (c *Config) Validate() error {
	if c.Storage != StorageJSON && c.Storage != StorageDynamoDB {
		return fmt.Errorf("unknown storage backend: %s", c.Storage)
	}
	if c.Storage == StorageDynamoDB && c.DynamoDBTable == "" {
		return fmt.Errorf("DYNAMODB_TABLE is required for the dynamodb backend")
	}
	if c.Ranking.ScoreThreshold < 0 || c.Ranking.ScoreThreshold >= 1 {
		return fmt.Errorf("RANKING_SCORE_THRESHOLD must be in [0,1)")
	}
	if c.Ranking.MaxResults <= 0 {
		return fmt.Errorf("RANKING_MAX_RESULTS must be positive")
	}
	if c.SuggestionThreshold <= 0 || c.SuggestionThreshold > 1 {
		return fmt.Errorf("SUGGESTION_THRESHOLD must be in (0,1]")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
