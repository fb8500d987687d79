// Package dynamo implements the durable store ports on DynamoDB with
// whole-collection load/save semantics. Each collection lives under a
// single partition key; records carry their payload as a JSON blob so
// the table schema stays stable across entity changes.
package dynamo

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"recall-backend/domain/core/entities"
	pkgerrors "recall-backend/pkg/errors"
)

const (
	partitionRelationships = "RELATIONSHIPS"
	partitionHierarchy     = "HIERARCHY"

	// DynamoDB caps batch writes at 25 requests
	batchWriteLimit = 25
)

type record struct {
	PK      string `dynamodbav:"PK"`
	SK      string `dynamodbav:"SK"`
	Payload string `dynamodbav:"Payload"`
}

// Store implements both durable store ports over one table
type Store struct {
	client    *dynamodb.Client
	tableName string
}

// NewStore creates a DynamoDB-backed store
func NewStore(client *dynamodb.Client, tableName string) *Store {
	return &Store{client: client, tableName: tableName}
}

// ReadAllRelationships loads the full edge set
func (s *Store) ReadAllRelationships(ctx context.Context) ([]*entities.Relationship, error) {
	payloads, err := s.readPartition(ctx, partitionRelationships)
	if err != nil {
		return nil, pkgerrors.NewPersistenceError("read relationships", err)
	}

	relationships := make([]*entities.Relationship, 0, len(payloads))
	for _, payload := range payloads {
		var rel entities.Relationship
		if err := json.Unmarshal([]byte(payload), &rel); err != nil {
			return nil, pkgerrors.NewPersistenceError("decode relationship", err)
		}
		relationships = append(relationships, &rel)
	}
	return relationships, nil
}

// WriteAllRelationships replaces the full edge set
func (s *Store) WriteAllRelationships(ctx context.Context, relationships []*entities.Relationship) error {
	records := make(map[string]string, len(relationships))
	for _, rel := range relationships {
		payload, err := json.Marshal(rel)
		if err != nil {
			return pkgerrors.NewPersistenceError("encode relationship", err)
		}
		records[rel.PairKey()] = string(payload)
	}

	if err := s.replacePartition(ctx, partitionRelationships, records); err != nil {
		return pkgerrors.NewPersistenceError("write relationships", err)
	}
	return nil
}

// ReadAllHierarchy loads the full node set
func (s *Store) ReadAllHierarchy(ctx context.Context) ([]*entities.HierarchyNode, error) {
	payloads, err := s.readPartition(ctx, partitionHierarchy)
	if err != nil {
		return nil, pkgerrors.NewPersistenceError("read hierarchy", err)
	}

	nodes := make([]*entities.HierarchyNode, 0, len(payloads))
	for _, payload := range payloads {
		var node entities.HierarchyNode
		if err := json.Unmarshal([]byte(payload), &node); err != nil {
			return nil, pkgerrors.NewPersistenceError("decode hierarchy node", err)
		}
		nodes = append(nodes, &node)
	}
	return nodes, nil
}

// WriteAllHierarchy replaces the full node set
func (s *Store) WriteAllHierarchy(ctx context.Context, nodes []*entities.HierarchyNode) error {
	records := make(map[string]string, len(nodes))
	for _, node := range nodes {
		payload, err := json.Marshal(node)
		if err != nil {
			return pkgerrors.NewPersistenceError("encode hierarchy node", err)
		}
		records[node.ID] = string(payload)
	}

	if err := s.replacePartition(ctx, partitionHierarchy, records); err != nil {
		return pkgerrors.NewPersistenceError("write hierarchy", err)
	}
	return nil
}

// readPartition returns all payloads under a partition keyed by SK
func (s *Store) readPartition(ctx context.Context, pk string) (map[string]string, error) {
	payloads := make(map[string]string)

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pk},
		},
	}

	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		var records []record
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &records); err != nil {
			return nil, err
		}
		for _, rec := range records {
			payloads[rec.SK] = rec.Payload
		}
	}

	return payloads, nil
}

// replacePartition makes the partition's contents exactly match
// records: stale keys are deleted, everything else is put.
func (s *Store) replacePartition(ctx context.Context, pk string, records map[string]string) error {
	existing, err := s.readPartition(ctx, pk)
	if err != nil {
		return err
	}

	var requests []types.WriteRequest
	for sk := range existing {
		if _, keep := records[sk]; keep {
			continue
		}
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: pk},
					"SK": &types.AttributeValueMemberS{Value: sk},
				},
			},
		})
	}

	for sk, payload := range records {
		item, err := attributevalue.MarshalMap(record{PK: pk, SK: sk, Payload: payload})
		if err != nil {
			return err
		}
		requests = append(requests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: item},
		})
	}

	for start := 0; start < len(requests); start += batchWriteLimit {
		end := start + batchWriteLimit
		if end > len(requests) {
			end = len(requests)
		}

		batch := map[string][]types.WriteRequest{s.tableName: requests[start:end]}
		for len(batch[s.tableName]) > 0 {
			out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: batch,
			})
			if err != nil {
				return err
			}
			// Retry unprocessed items; DynamoDB sheds load this way
			batch = out.UnprocessedItems
		}
	}

	return nil
}

// RelationshipAdapter narrows the store to the relationship port
type RelationshipAdapter struct{ *Store }

// ReadAll implements ports.RelationshipStore
func (a RelationshipAdapter) ReadAll(ctx context.Context) ([]*entities.Relationship, error) {
	return a.ReadAllRelationships(ctx)
}

// WriteAll implements ports.RelationshipStore
func (a RelationshipAdapter) WriteAll(ctx context.Context, relationships []*entities.Relationship) error {
	return a.WriteAllRelationships(ctx, relationships)
}

// HierarchyAdapter narrows the store to the hierarchy port
type HierarchyAdapter struct{ *Store }

// ReadAll implements ports.HierarchyStore
func (a HierarchyAdapter) ReadAll(ctx context.Context) ([]*entities.HierarchyNode, error) {
	return a.ReadAllHierarchy(ctx)
}

// WriteAll implements ports.HierarchyStore
func (a HierarchyAdapter) WriteAll(ctx context.Context, nodes []*entities.HierarchyNode) error {
	return a.WriteAllHierarchy(ctx, nodes)
}
