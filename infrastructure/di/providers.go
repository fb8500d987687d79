package di

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/wire"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"recall-backend/application/ports"
	"recall-backend/application/services"
	"recall-backend/infrastructure/config"
	"recall-backend/infrastructure/persistence/dynamo"
	"recall-backend/infrastructure/persistence/jsonstore"
	"recall-backend/infrastructure/semantic"
	"recall-backend/pkg/observability"
)

// Container holds the initialized application graph
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics

	Corpus    ports.CorpusReader
	Related   *services.RelatedItemsService
	Links     *services.LinkService
	Hierarchy *services.HierarchyService
}

// Load warms the in-memory indexes from durable storage. Must be
// called once before serving traffic.
func (c *Container) Load(ctx context.Context) error {
	if err := c.Links.Load(ctx); err != nil {
		return err
	}
	return c.Hierarchy.Load(ctx)
}

// Stores bundles the two durable store ports, which always come from
// the same backend selection.
type Stores struct {
	Relationships ports.RelationshipStore
	Hierarchy     ports.HierarchyStore
}

// ProviderSet is the wire provider set for the full container
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideCorpusReader,
	ProvideStores,
	ProvideRelationshipStore,
	ProvideHierarchyStore,
	ProvideSemanticIndex,
	ProvideKeywordFinder,
	ProvideSemanticFinder,
	ProvideRelatedService,
	ProvideLinkService,
	ProvideHierarchyService,
	wire.Struct(new(Container), "*"),
)

// ProvideLogger builds the process logger from configuration
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

// ProvideMetrics builds the metrics registry
func ProvideMetrics() *observability.Metrics {
	return observability.NewMetrics()
}

// ProvideCorpusReader builds the read-only corpus adapter
func ProvideCorpusReader(cfg *config.Config) ports.CorpusReader {
	return jsonstore.NewCorpusReader(cfg.CorpusPath)
}

// ProvideStores selects the durable store backend
func ProvideStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.Storage {
	case config.StorageDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		store := dynamo.NewStore(dynamodb.NewFromConfig(awsCfg), cfg.DynamoDBTable)
		return &Stores{
			Relationships: dynamo.RelationshipAdapter{Store: store},
			Hierarchy:     dynamo.HierarchyAdapter{Store: store},
		}, nil
	default:
		return &Stores{
			Relationships: jsonstore.NewRelationshipStore(cfg.DataDir + "/relationships.json"),
			Hierarchy:     jsonstore.NewHierarchyStore(cfg.DataDir + "/hierarchy.json"),
		}, nil
	}
}

// ProvideRelationshipStore narrows the store bundle
func ProvideRelationshipStore(stores *Stores) ports.RelationshipStore {
	return stores.Relationships
}

// ProvideHierarchyStore narrows the store bundle
func ProvideHierarchyStore(stores *Stores) ports.HierarchyStore {
	return stores.Hierarchy
}

// ProvideSemanticIndex builds the semantic client, or nil when no
// endpoint is configured (keyword-only mode)
func ProvideSemanticIndex(cfg *config.Config) ports.SemanticIndex {
	if cfg.SemanticEndpoint == "" {
		return nil
	}
	return semantic.NewClient(cfg.SemanticEndpoint)
}

// ProvideKeywordFinder builds the keyword retrieval path
func ProvideKeywordFinder(corpus ports.CorpusReader, logger *zap.Logger) *services.KeywordCandidateFinder {
	return services.NewKeywordCandidateFinder(corpus, nil, nil, logger)
}

// ProvideSemanticFinder builds the semantic retrieval path
func ProvideSemanticFinder(
	index ports.SemanticIndex,
	corpus ports.CorpusReader,
	cfg *config.Config,
	logger *zap.Logger,
) *services.SemanticCandidateFinder {
	return services.NewSemanticCandidateFinder(index, corpus, &services.SemanticFinderConfig{
		TopK: cfg.SemanticTopK,
	}, logger)
}

// ProvideRelatedService builds the retrieval orchestrator
func ProvideRelatedService(
	corpus ports.CorpusReader,
	keyword *services.KeywordCandidateFinder,
	semanticFinder *services.SemanticCandidateFinder,
	cfg *config.Config,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *services.RelatedItemsService {
	return services.NewRelatedItemsService(corpus, keyword, semanticFinder, &cfg.Ranking, metrics, logger)
}

// ProvideLinkService builds the relationship graph store
func ProvideLinkService(
	store ports.RelationshipStore,
	corpus ports.CorpusReader,
	cfg *config.Config,
	logger *zap.Logger,
) *services.LinkService {
	return services.NewLinkService(store, corpus, &services.LinkConfig{
		JaccardThreshold: cfg.SuggestionThreshold,
		MaxSuggestions:   cfg.MaxSuggestions,
	}, logger)
}

// ProvideHierarchyService builds the task hierarchy service
func ProvideHierarchyService(
	store ports.HierarchyStore,
	cfg *config.Config,
	logger *zap.Logger,
) *services.HierarchyService {
	return services.NewHierarchyService(store, &services.HierarchyConfig{
		AllowCrossProjectMoves: cfg.AllowCrossProjectMoves,
	}, logger)
}
