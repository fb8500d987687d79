package services

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"recall-backend/application/ports"
	"recall-backend/domain/core/entities"
	domainservices "recall-backend/domain/services"
	pkgerrors "recall-backend/pkg/errors"
)

// LinkConfig configures relationship auto-suggestion policy
type LinkConfig struct {
	// JaccardThreshold is the minimum keyword-set similarity for a
	// link suggestion
	JaccardThreshold float64
	// MaxSuggestions caps auto-suggest output when the caller does
	// not specify a limit
	MaxSuggestions int
}

// DefaultLinkConfig returns the default link policy
func DefaultLinkConfig() *LinkConfig {
	return &LinkConfig{
		JaccardThreshold: 0.3,
		MaxSuggestions:   5,
	}
}

// LinkSuggestion is one auto-suggested connection
type LinkSuggestion struct {
	ID         string                  `json:"id"`
	Title      string                  `json:"title,omitempty"`
	Similarity float64                 `json:"similarity"`
	Type       entities.ConnectionType `json:"type"`
}

// GraphNode is a visualization-ready node
type GraphNode struct {
	ID      string            `json:"id"`
	Title   string            `json:"title,omitempty"`
	Kind    entities.ItemKind `json:"kind"`
	Project string            `json:"project,omitempty"`
	Size    string            `json:"size"` // small | medium | large
}

// GraphEdge is a visualization-ready edge
type GraphEdge struct {
	FromID string                  `json:"from_id"`
	ToID   string                  `json:"to_id"`
	Type   entities.ConnectionType `json:"type"`
}

// GraphStats summarizes a connection graph
type GraphStats struct {
	NodeCount   int                            `json:"node_count"`
	EdgeCount   int                            `json:"edge_count"`
	EdgesByType map[entities.ConnectionType]int `json:"edges_by_type"`
}

// ConnectionGraph is the visualization-ready graph payload
type ConnectionGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
	Stats GraphStats  `json:"stats"`
}

// Node size buckets by content length
const (
	graphNodeMediumLength = 300
	graphNodeLargeLength  = 1000
)

// LinkService is the bidirectional relationship graph store. It keeps
// a single in-memory index over edge pairs, loaded once at startup.
//
// Writes are serialized with a mutex: every link/unlink mutates both
// a forward and a reverse entry and then persists the whole
// collection, and interleaving those steps would corrupt the pair
// invariant. The in-memory index is only committed after the durable
// store confirms the write.
type LinkService struct {
	mu     sync.Mutex
	store  ports.RelationshipStore
	corpus ports.CorpusReader

	extractor  domainservices.TermExtractor
	similarity domainservices.SimilarityCalculator
	classifier domainservices.ConnectionClassifier
	config     *LinkConfig
	logger     *zap.Logger

	// edges indexes every stored edge (both halves of each pair) by
	// its from:to composite key
	edges  map[string]*entities.Relationship
	loaded bool
}

// NewLinkService creates the relationship graph store
func NewLinkService(
	store ports.RelationshipStore,
	corpus ports.CorpusReader,
	config *LinkConfig,
	logger *zap.Logger,
) *LinkService {
	if config == nil {
		config = DefaultLinkConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	extractor := domainservices.NewDefaultTermExtractor()
	return &LinkService{
		store:      store,
		corpus:     corpus,
		extractor:  extractor,
		similarity: domainservices.NewDefaultSimilarityCalculator(extractor),
		classifier: domainservices.NewDefaultConnectionClassifier(),
		config:     config,
		logger:     logger,
		edges:      make(map[string]*entities.Relationship),
	}
}

// Load reads the edge set from the durable store into the index.
// Called once at startup; subsequent calls are no-ops.
func (s *LinkService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return nil
	}

	relationships, err := s.store.ReadAll(ctx)
	if err != nil {
		return pkgerrors.NewPersistenceError("load relationships", err)
	}

	for _, rel := range relationships {
		s.edges[rel.PairKey()] = rel
	}
	s.loaded = true

	s.logger.Info("relationship index loaded", zap.Int("edges", len(s.edges)))
	return nil
}

// LinkItems creates a typed edge and its auto-generated reverse
// counterpart as one atomic pair. An existing edge on the same
// (from, to) key is overwritten along with its reverse: relink is
// idempotent, not additive.
func (s *LinkService) LinkItems(
	ctx context.Context,
	fromID, toID string,
	connType entities.ConnectionType,
	metadata map[string]interface{},
) (*entities.Relationship, error) {
	op, err := entities.NewLinkOperation(fromID, toID, connType, metadata)
	if err != nil {
		return nil, err
	}
	forward, reverse := op.Records()

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cloneIndex()
	delete(next, forward.PairKey())
	delete(next, reverse.PairKey())
	next[forward.PairKey()] = forward
	next[reverse.PairKey()] = reverse

	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}
	s.edges = next

	s.logger.Info("linked items",
		zap.String("from", fromID),
		zap.String("to", toID),
		zap.String("type", connType.String()),
	)
	return forward, nil
}

// UnlinkItems removes both directions of an edge pair. A missing
// pair yields a NotFound error rather than a silent no-op, so
// callers can distinguish "removed" from "never existed".
func (s *LinkService) UnlinkItems(ctx context.Context, fromID, toID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	forwardKey := fromID + ":" + toID
	reverseKey := toID + ":" + fromID
	if _, ok := s.edges[forwardKey]; !ok {
		return pkgerrors.NewNotFoundError("relationship " + forwardKey)
	}

	next := s.cloneIndex()
	delete(next, forwardKey)
	delete(next, reverseKey)

	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.edges = next

	s.logger.Info("unlinked items", zap.String("from", fromID), zap.String("to", toID))
	return nil
}

// GetConnections returns all non-reverse edges originating at itemID
func (s *LinkService) GetConnections(ctx context.Context, itemID string) []*entities.Relationship {
	s.mu.Lock()
	defer s.mu.Unlock()

	var connections []*entities.Relationship
	for _, rel := range s.edges {
		if rel.FromID == itemID && !rel.IsReverse() {
			connections = append(connections, rel)
		}
	}

	sort.Slice(connections, func(i, j int) bool {
		return connections[i].ToID < connections[j].ToID
	})
	return connections
}

// AutoSuggestLinks proposes connections for an item based on
// keyword-Jaccard similarity against the corpus, excluding the item
// itself and anything already connected.
func (s *LinkService) AutoSuggestLinks(ctx context.Context, itemID string, maxSuggestions int) ([]LinkSuggestion, error) {
	if maxSuggestions <= 0 {
		maxSuggestions = s.config.MaxSuggestions
	}

	query, err := s.corpus.GetItem(ctx, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "auto-suggest failed to load item")
	}
	if query == nil {
		return nil, pkgerrors.NewNotFoundError("item " + itemID)
	}

	items, err := s.corpus.ListItems(ctx, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "auto-suggest failed to list corpus")
	}

	connected := s.connectedIDs(itemID)
	queryKeywords := s.extractor.ExtractKeywordSet(query.SearchText())

	var suggestions []LinkSuggestion
	for _, item := range items {
		if item.ID == itemID || connected[item.ID] {
			continue
		}

		similarity := s.similarity.CalculateWithKeywords(item, queryKeywords)
		if similarity < s.config.JaccardThreshold {
			continue
		}

		suggestions = append(suggestions, LinkSuggestion{
			ID:         item.ID,
			Title:      item.Title,
			Similarity: similarity,
			Type:       s.classifier.Classify(item, query),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Similarity > suggestions[j].Similarity
	})
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}

	return suggestions, nil
}

// GetConnectionGraph builds a visualization-ready graph. With a
// project filter, an edge survives if at least one endpoint matches
// the project; nodes survive if they appear in a surviving edge or
// match the project themselves.
func (s *LinkService) GetConnectionGraph(ctx context.Context, projectFilter string) (*ConnectionGraph, error) {
	items, err := s.corpus.ListItems(ctx, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "connection graph failed to list corpus")
	}

	known := make(map[string]*entities.Item, len(items))
	for _, item := range items {
		known[item.ID] = item
	}

	graph := &ConnectionGraph{
		Stats: GraphStats{EdgesByType: make(map[entities.ConnectionType]int)},
	}

	wanted := make(map[string]bool)
	for _, rel := range s.snapshotEdges() {
		if rel.IsReverse() {
			continue
		}
		from, fromOK := known[rel.FromID]
		to, toOK := known[rel.ToID]
		if !fromOK || !toOK {
			// Edges with dangling endpoints are not drawable
			continue
		}
		if projectFilter != "" && from.Project != projectFilter && to.Project != projectFilter {
			continue
		}

		graph.Edges = append(graph.Edges, GraphEdge{
			FromID: rel.FromID,
			ToID:   rel.ToID,
			Type:   rel.Type,
		})
		graph.Stats.EdgesByType[rel.Type]++
		wanted[rel.FromID] = true
		wanted[rel.ToID] = true
	}

	for _, item := range items {
		if projectFilter != "" && item.Project != projectFilter && !wanted[item.ID] {
			continue
		}
		graph.Nodes = append(graph.Nodes, GraphNode{
			ID:      item.ID,
			Title:   item.Title,
			Kind:    item.Kind,
			Project: item.Project,
			Size:    sizeBucket(len(item.Content)),
		})
	}

	sort.Slice(graph.Nodes, func(i, j int) bool { return graph.Nodes[i].ID < graph.Nodes[j].ID })
	sort.Slice(graph.Edges, func(i, j int) bool {
		if graph.Edges[i].FromID != graph.Edges[j].FromID {
			return graph.Edges[i].FromID < graph.Edges[j].FromID
		}
		return graph.Edges[i].ToID < graph.Edges[j].ToID
	})

	graph.Stats.NodeCount = len(graph.Nodes)
	graph.Stats.EdgeCount = len(graph.Edges)
	return graph, nil
}

// persist writes the candidate edge set to the durable store. The
// caller holds the mutex and must only swap the index in on success.
func (s *LinkService) persist(ctx context.Context, index map[string]*entities.Relationship) error {
	relationships := make([]*entities.Relationship, 0, len(index))
	for _, rel := range index {
		relationships = append(relationships, rel)
	}
	sort.Slice(relationships, func(i, j int) bool {
		return relationships[i].PairKey() < relationships[j].PairKey()
	})

	if err := s.store.WriteAll(ctx, relationships); err != nil {
		return pkgerrors.NewPersistenceError("write relationships", err)
	}
	return nil
}

func (s *LinkService) cloneIndex() map[string]*entities.Relationship {
	next := make(map[string]*entities.Relationship, len(s.edges)+2)
	for k, v := range s.edges {
		next[k] = v
	}
	return next
}

// connectedIDs returns every id this item already has an edge with
func (s *LinkService) connectedIDs(itemID string) map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	connected := make(map[string]bool)
	for _, rel := range s.edges {
		if rel.FromID == itemID {
			connected[rel.ToID] = true
		}
		if rel.ToID == itemID {
			connected[rel.FromID] = true
		}
	}
	return connected
}

func (s *LinkService) snapshotEdges() []*entities.Relationship {
	s.mu.Lock()
	defer s.mu.Unlock()

	edges := make([]*entities.Relationship, 0, len(s.edges))
	for _, rel := range s.edges {
		edges = append(edges, rel)
	}
	return edges
}

func sizeBucket(contentLength int) string {
	switch {
	case contentLength > graphNodeLargeLength:
		return "large"
	case contentLength > graphNodeMediumLength:
		return "medium"
	default:
		return "small"
	}
}
