package neo4jDB

import (
	"context"
	"fmt"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/qafarov/agribot/internal/config"
	"github.com/qafarov/agribot/internal/domain/commonModels"
	"github.com/qafarov/agribot/internal/metrics"
	"github.com/qafarov/agribot/internal/rag/graphDB"
	"github.com/qafarov/agribot/pkg/logger_i"
)

var logger *logger_i.Logger
var driverInstance neo4j.DriverWithContext
var once sync.Once

type ClientHolder struct {
	driver neo4j.DriverWithContext
}

// GetGraphClient returns the shared neo4j-backed graph store, or nil when
// the database is unreachable at startup.
func GetGraphClient(ctx context.Context) *ClientHolder {
	once.Do(func() {
		logger = logger_i.NewLogger("Neo4j")
		res := newDriver(ctx)
		if res != nil {
			driverInstance = res
			go closeDriver(ctx, driverInstance)
		}
	})

	if driverInstance == nil {
		return nil
	}
	return &ClientHolder{driver: driverInstance}
}

func newDriver(ctx context.Context) neo4j.DriverWithContext {
	driver, err := neo4j.NewDriverWithContext(
		config.Neo4jURI,
		neo4j.BasicAuth(config.Neo4jUsername, config.Neo4jPassword, ""),
	)
	if err != nil {
		logger.Error("could not instantiate neo4j driver: ", "error:", err)
		return nil
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		logger.Error("neo4j is unreachable: ", "uri", config.Neo4jURI, "error:", err)
		return nil
	}
	return driver
}

func closeDriver(ctx context.Context, driver neo4j.DriverWithContext) {
	<-ctx.Done()
	logger.Info("Shutting down Neo4j driver")
	if err := driver.Close(context.Background()); err != nil {
		logger.Error("could not close neo4j driver: ", "error:", err)
	}
	logger.Info("Closed Neo4j driver")
}

// UpsertGraph merges entities as labeled nodes (deduplicated by name) and
// relationships as typed edges. Re-running the same batch creates nothing
// new. A single failed edge is logged and skipped, it does not abort the
// batch; edges whose endpoints never resolved are counted in the report.
func (db *ClientHolder) UpsertGraph(ctx context.Context, entities []commonModels.Entity, relationships []commonModels.Relationship) (graphDB.UpsertReport, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	session := db.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	entityIds := make(map[string]string, len(entities))
	for _, entity := range entities {
		label := graphDB.EntityLabel(entity.Type)

		// label comes from the fixed vocabulary, never from model output
		query := fmt.Sprintf(`
		MERGE (n:%s {name: $name})
		SET n.description = $description
		RETURN elementId(n) as id
		`, label)

		result, err := session.Run(ctx, query, map[string]any{
			"name":        entity.Name,
			"description": entity.Description,
		})
		if err != nil {
			return graphDB.UpsertReport{}, fmt.Errorf("merge entity %q: %w", entity.Name, err)
		}
		record, err := result.Single(ctx)
		if err != nil {
			return graphDB.UpsertReport{}, fmt.Errorf("merge entity %q: %w", entity.Name, err)
		}
		if id, ok := record.Get("id"); ok {
			entityIds[entity.Name] = id.(string)
		}
	}

	edges, skipped := graphDB.ResolveEdges(entityIds, relationships)
	if skipped > 0 {
		loggr.Warn("Dropped relationships with unresolved endpoints", "count", skipped)
		metrics.AddSkippedRelationships(skipped)
	}

	created := 0
	for _, edge := range edges {
		query := fmt.Sprintf(`
		MATCH (a), (b)
		WHERE elementId(a) = $from_id AND elementId(b) = $to_id
		MERGE (a)-[r:%s]->(b)
		RETURN r
		`, edge.Type)

		if _, err := session.Run(ctx, query, map[string]any{
			"from_id": edge.FromId,
			"to_id":   edge.ToId,
		}); err != nil {
			loggr.Warn("Could not create relationship", "type", edge.Type, "error", err)
			continue
		}
		created++
	}

	loggr.Info("Stored graph batch", "entities", len(entityIds), "relationships", created, "skipped", skipped)
	return graphDB.UpsertReport{
		Entities:      len(entityIds),
		Relationships: created,
		Skipped:       skipped,
	}, nil
}

// Lookup finds up to 5 entities whose name contains the given string
// (case-insensitive) together with their direct neighbours.
func (db *ClientHolder) Lookup(ctx context.Context, name string) ([]commonModels.EntityMatch, error) {
	session := db.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
	MATCH (n)
	WHERE toLower(n.name) CONTAINS toLower($name)
	OPTIONAL MATCH (n)-[r]-(related)
	RETURN n.name as entity, labels(n) as types,
	       collect(DISTINCT related.name) as related_entities
	LIMIT 5
	`, map[string]any{"name": name})
	if err != nil {
		return nil, fmt.Errorf("graph lookup: %w", err)
	}

	var matches []commonModels.EntityMatch
	for result.Next(ctx) {
		record := result.Record()
		match := commonModels.EntityMatch{}

		if v, ok := record.Get("entity"); ok && v != nil {
			match.Name, _ = v.(string)
		}
		if v, ok := record.Get("types"); ok {
			match.Types = toStringSlice(v)
		}
		if v, ok := record.Get("related_entities"); ok {
			match.Related = toStringSlice(v)
		}
		matches = append(matches, match)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("graph lookup: %w", err)
	}
	return matches, nil
}

func (db *ClientHolder) Counts(ctx context.Context) (int64, int64, error) {
	session := db.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	nodes, err := singleCount(ctx, session, "MATCH (n) RETURN count(n) as c")
	if err != nil {
		return 0, 0, fmt.Errorf("node count: %w", err)
	}
	relationships, err := singleCount(ctx, session, "MATCH ()-[r]->() RETURN count(r) as c")
	if err != nil {
		return 0, 0, fmt.Errorf("relationship count: %w", err)
	}
	return nodes, relationships, nil
}

func singleCount(ctx context.Context, session neo4j.SessionWithContext, query string) (int64, error) {
	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return 0, err
	}
	record, err := result.Single(ctx)
	if err != nil {
		return 0, err
	}
	v, ok := record.Get("c")
	if !ok {
		return 0, fmt.Errorf("count query returned no value")
	}
	count, _ := v.(int64)
	return count, nil
}

func toStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
