// Package jsonstore implements the durable store ports over single
// JSON files with whole-collection load/save semantics. Writes are
// atomic (temp file + rename) so a crashed save never leaves a
// truncated store behind.
package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"recall-backend/domain/core/entities"
	pkgerrors "recall-backend/pkg/errors"
)

// currentSchemaVersion is the store file format version. Legacy bare
// arrays (pre-envelope) load as version 0 and are migrated on read;
// the next write persists the current format. There is exactly one
// source of truth per collection - no side-by-side legacy mirror.
const currentSchemaVersion = 1

type envelope struct {
	Version int             `json:"version"`
	Records json.RawMessage `json:"records"`
}

// RelationshipStore persists the relationship edge set
type RelationshipStore struct {
	path string
}

// NewRelationshipStore creates a store backed by the given file
func NewRelationshipStore(path string) *RelationshipStore {
	return &RelationshipStore{path: path}
}

// ReadAll loads the full edge set; a missing file is an empty set
func (s *RelationshipStore) ReadAll(ctx context.Context) ([]*entities.Relationship, error) {
	var relationships []*entities.Relationship
	if err := readCollection(s.path, &relationships); err != nil {
		return nil, pkgerrors.NewPersistenceError("read relationships", err)
	}
	return relationships, nil
}

// WriteAll atomically replaces the full edge set
func (s *RelationshipStore) WriteAll(ctx context.Context, relationships []*entities.Relationship) error {
	if relationships == nil {
		relationships = []*entities.Relationship{}
	}
	if err := writeCollection(s.path, relationships); err != nil {
		return pkgerrors.NewPersistenceError("write relationships", err)
	}
	return nil
}

// HierarchyStore persists the task tree node set
type HierarchyStore struct {
	path string
}

// NewHierarchyStore creates a store backed by the given file
func NewHierarchyStore(path string) *HierarchyStore {
	return &HierarchyStore{path: path}
}

// ReadAll loads the full node set; a missing file is an empty set
func (s *HierarchyStore) ReadAll(ctx context.Context) ([]*entities.HierarchyNode, error) {
	var nodes []*entities.HierarchyNode
	if err := readCollection(s.path, &nodes); err != nil {
		return nil, pkgerrors.NewPersistenceError("read hierarchy", err)
	}
	return nodes, nil
}

// WriteAll atomically replaces the full node set
func (s *HierarchyStore) WriteAll(ctx context.Context, nodes []*entities.HierarchyNode) error {
	if nodes == nil {
		nodes = []*entities.HierarchyNode{}
	}
	if err := writeCollection(s.path, nodes); err != nil {
		return pkgerrors.NewPersistenceError("write hierarchy", err)
	}
	return nil
}

// readCollection loads records from a versioned store file into out
// (a pointer to a slice). Legacy bare-array files migrate in place.
func readCollection(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err == nil && env.Version > 0 {
		if env.Version > currentSchemaVersion {
			return fmt.Errorf("store file %s has unsupported version %d", path, env.Version)
		}
		return json.Unmarshal(env.Records, out)
	}

	// Version 0: legacy bare array
	return json.Unmarshal(data, out)
}

// writeCollection atomically writes records in the current envelope format
func writeCollection(path string, records interface{}) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(envelope{Version: currentSchemaVersion, Records: raw}, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
