package entities

import (
	"time"

	"github.com/google/uuid"

	pkgerrors "recall-backend/pkg/errors"
)

// ConnectionType classifies a relationship edge between two items
type ConnectionType string

const (
	// Content-derived types assigned by the classifier
	ConnectionResearch       ConnectionType = "research"
	ConnectionImplementation ConnectionType = "implementation"
	ConnectionBugFix         ConnectionType = "bug_fix"
	ConnectionDesign         ConnectionType = "design"
	ConnectionPlanning       ConnectionType = "planning"
	ConnectionCategoryMatch  ConnectionType = "category_match"
	ConnectionProjectContext ConnectionType = "project_context"
	ConnectionReference      ConnectionType = "reference"

	// Structural types set explicitly by callers
	ConnectionBlocks        ConnectionType = "blocks"
	ConnectionBlockedBy     ConnectionType = "blocked_by"
	ConnectionImplements    ConnectionType = "implements"
	ConnectionImplementedBy ConnectionType = "implemented_by"
	ConnectionReferences    ConnectionType = "references"
	ConnectionReferencedBy  ConnectionType = "referenced_by"
	ConnectionCauses        ConnectionType = "causes"
	ConnectionCausedBy      ConnectionType = "caused_by"
	ConnectionRelated       ConnectionType = "related"
)

// connectionInverses maps structural types to their reverse counterparts.
// Types without a registered inverse default to "related".
var connectionInverses = map[ConnectionType]ConnectionType{
	ConnectionBlocks:        ConnectionBlockedBy,
	ConnectionBlockedBy:     ConnectionBlocks,
	ConnectionImplements:    ConnectionImplementedBy,
	ConnectionImplementedBy: ConnectionImplements,
	ConnectionReferences:    ConnectionReferencedBy,
	ConnectionReferencedBy:  ConnectionReferences,
	ConnectionCauses:        ConnectionCausedBy,
	ConnectionCausedBy:      ConnectionCauses,
	ConnectionRelated:       ConnectionRelated,
}

// Inverse returns the reverse counterpart for this connection type
func (t ConnectionType) Inverse() ConnectionType {
	if inverse, ok := connectionInverses[t]; ok {
		return inverse
	}
	return ConnectionRelated
}

// String returns the string representation of the connection type
func (t ConnectionType) String() string {
	return string(t)
}

// metadataReverseLink marks the auto-generated half of an edge pair
const metadataReverseLink = "reverse_link"

// Relationship is a directed typed edge between two items.
// Every stored forward edge has exactly one auto-generated reverse
// counterpart; the pair is created and deleted atomically.
type Relationship struct {
	ID       string                 `json:"id"`
	FromID   string                 `json:"from_id"`
	ToID     string                 `json:"to_id"`
	Type     ConnectionType         `json:"type"`
	Created  time.Time              `json:"created"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// PairKey returns the composite lookup key for this edge's direction.
// The key is unique per store; relinking the same pair overwrites.
func (r *Relationship) PairKey() string {
	return r.FromID + ":" + r.ToID
}

// IsReverse reports whether this edge is the auto-generated half of a pair
func (r *Relationship) IsReverse() bool {
	if r.Metadata == nil {
		return false
	}
	reverse, ok := r.Metadata[metadataReverseLink].(bool)
	return ok && reverse
}

// LinkOperation is a value type producing both halves of an edge pair.
// Modeling the dual write as a single operation keeps the pairing
// invariant structurally enforced instead of relying on two calls.
type LinkOperation struct {
	FromID   string
	ToID     string
	Type     ConnectionType
	Metadata map[string]interface{}
	Created  time.Time
}

// NewLinkOperation validates and builds a link operation
func NewLinkOperation(fromID, toID string, connType ConnectionType, metadata map[string]interface{}) (*LinkOperation, error) {
	if fromID == "" || toID == "" {
		return nil, pkgerrors.NewValidationError("link requires both from and to ids")
	}
	if fromID == toID {
		return nil, pkgerrors.NewValidationError("cannot link an item to itself")
	}
	if connType == "" {
		connType = ConnectionRelated
	}

	return &LinkOperation{
		FromID:   fromID,
		ToID:     toID,
		Type:     connType,
		Metadata: metadata,
		Created:  time.Now(),
	}, nil
}

// Records materializes the forward edge and its reverse counterpart
func (op *LinkOperation) Records() (forward, reverse *Relationship) {
	forwardMeta := make(map[string]interface{}, len(op.Metadata)+1)
	for k, v := range op.Metadata {
		forwardMeta[k] = v
	}
	forwardMeta[metadataReverseLink] = false

	forward = &Relationship{
		ID:       uuid.New().String(),
		FromID:   op.FromID,
		ToID:     op.ToID,
		Type:     op.Type,
		Created:  op.Created,
		Metadata: forwardMeta,
	}

	reverse = &Relationship{
		ID:      uuid.New().String(),
		FromID:  op.ToID,
		ToID:    op.FromID,
		Type:    op.Type.Inverse(),
		Created: op.Created,
		Metadata: map[string]interface{}{
			metadataReverseLink: true,
		},
	}

	return forward, reverse
}
