package graphDB

import (
	"context"

	"github.com/qafarov/agribot/internal/domain/commonModels"
)

// UpsertReport summarizes one graph write batch. Skipped counts
// relationships whose endpoints were not resolved within the batch.
type UpsertReport struct {
	Entities      int
	Relationships int
	Skipped       int
}

type Store interface {
	UpsertGraph(ctx context.Context, entities []commonModels.Entity, relationships []commonModels.Relationship) (UpsertReport, error)
	Lookup(ctx context.Context, name string) ([]commonModels.EntityMatch, error)
	Counts(ctx context.Context) (nodes int64, relationships int64, err error)
}

// Edge is a relationship with both endpoints resolved to internal node ids
// and its type already sanitized, safe to splice into a query.
type Edge struct {
	FromId string
	ToId   string
	Type   string
}

// ResolveEdges maps relationship endpoints through the name->id table built
// while upserting entities. Relationships with an unknown endpoint are
// dropped, not errored; the caller reports the count.
func ResolveEdges(entityIds map[string]string, relationships []commonModels.Relationship) (edges []Edge, skipped int) {
	for _, rel := range relationships {
		fromId, okFrom := entityIds[rel.From]
		toId, okTo := entityIds[rel.To]
		if !okFrom || !okTo {
			skipped++
			continue
		}
		edges = append(edges, Edge{
			FromId: fromId,
			ToId:   toId,
			Type:   RelationshipType(rel.Type),
		})
	}
	return edges, skipped
}
