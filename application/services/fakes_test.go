package services

import (
	"context"

	"recall-backend/application/ports"
	"recall-backend/domain/core/entities"
	pkgerrors "recall-backend/pkg/errors"
)

// fakeCorpus is an in-memory CorpusReader for tests
type fakeCorpus struct {
	items   []*entities.Item
	listErr error
}

func (f *fakeCorpus) ListItems(ctx context.Context, filter *ports.ItemFilter) ([]*entities.Item, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items, nil
}

func (f *fakeCorpus) GetItem(ctx context.Context, id string) (*entities.Item, error) {
	for _, item := range f.items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("item " + id)
}

// fakeSemanticIndex returns canned neighbors or a canned error
type fakeSemanticIndex struct {
	neighbors []ports.Neighbor
	err       error
	calls     int
}

func (f *fakeSemanticIndex) NearestNeighbors(ctx context.Context, item *entities.Item, k int) ([]ports.Neighbor, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.neighbors, nil
}

// fakeRelationshipStore records writes and can be told to fail them
type fakeRelationshipStore struct {
	stored    []*entities.Relationship
	writeErr  error
	writes    int
}

func (f *fakeRelationshipStore) ReadAll(ctx context.Context) ([]*entities.Relationship, error) {
	return f.stored, nil
}

func (f *fakeRelationshipStore) WriteAll(ctx context.Context, relationships []*entities.Relationship) error {
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.stored = relationships
	return nil
}

// fakeHierarchyStore records writes and can be told to fail them
type fakeHierarchyStore struct {
	stored   []*entities.HierarchyNode
	writeErr error
	writes   int
}

func (f *fakeHierarchyStore) ReadAll(ctx context.Context) ([]*entities.HierarchyNode, error) {
	return f.stored, nil
}

func (f *fakeHierarchyStore) WriteAll(ctx context.Context, nodes []*entities.HierarchyNode) error {
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.stored = nodes
	return nil
}
