// Package graph implements Neo4j adapters for the application.
package graph

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/18vikastg/onebox/core/domain"
	"github.com/18vikastg/onebox/core/port/out"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// =============================================================================
// Neo4j Sender Graph Sink
// =============================================================================

// SenderGraphSink records (Sender)-[:CLASSIFIED_AS]->(Category) edges with a
// running count, so repeat leads and bulk senders can be spotted across accounts.
type SenderGraphSink struct {
	driver neo4j.DriverWithContext
	dbName string
}

func NewSenderGraphSink(driver neo4j.DriverWithContext, dbName string) *SenderGraphSink {
	return &SenderGraphSink{driver: driver, dbName: dbName}
}

func (s *SenderGraphSink) Name() string { return "neo4j" }

// EnsureIndexes creates the uniqueness constraints the MERGE statements rely on.
func (s *SenderGraphSink) EnsureIndexes(ctx context.Context) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.dbName})
	defer session.Close(ctx)

	queries := []string{
		`CREATE CONSTRAINT sender_address IF NOT EXISTS FOR (s:Sender) REQUIRE s.address IS UNIQUE`,
		`CREATE CONSTRAINT category_name IF NOT EXISTS FOR (c:Category) REQUIRE c.name IS UNIQUE`,
	}
	for _, q := range queries {
		if _, err := session.Run(ctx, q, nil); err != nil {
			return fmt.Errorf("failed to create graph constraint: %w", err)
		}
	}
	return nil
}

// Save merges the sender and category nodes and bumps the edge counter.
func (s *SenderGraphSink) Save(ctx context.Context, rec *domain.ClassificationRecord) error {
	if rec == nil || rec.Message == nil || rec.Result == nil {
		return fmt.Errorf("incomplete classification record")
	}
	address := NormalizeSender(rec.Message.Sender)
	if address == "" {
		return nil
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.dbName})
	defer session.Close(ctx)

	query := `
		MERGE (s:Sender {address: $address})
		ON CREATE SET s.first_seen = $at
		SET s.last_seen = $at
		MERGE (c:Category {name: $category})
		MERGE (s)-[r:CLASSIFIED_AS]->(c)
		ON CREATE SET r.count = 0
		SET r.count = r.count + 1,
			r.last_method = $method,
			r.last_at = $at
	`

	params := map[string]any{
		"address":  address,
		"category": string(rec.Result.Category),
		"method":   string(rec.Result.Method),
		"at":       rec.Result.ClassifiedAt.Unix(),
	}

	if _, err := session.Run(ctx, query, params); err != nil {
		return fmt.Errorf("failed to record sender classification: %w", err)
	}
	return nil
}

// TopSenders returns the senders most often classified into category.
func (s *SenderGraphSink) TopSenders(ctx context.Context, category string, limit int) ([]out.SenderCount, error) {
	if limit <= 0 {
		limit = 10
	}
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.dbName})
	defer session.Close(ctx)

	query := `
		MATCH (s:Sender)-[r:CLASSIFIED_AS]->(:Category {name: $category})
		RETURN s.address AS address, r.count AS count
		ORDER BY count DESC, address
		LIMIT $limit
	`
	result, err := session.Run(ctx, query, map[string]any{"category": category, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("failed to query top senders: %w", err)
	}

	var rows []out.SenderCount
	for result.Next(ctx) {
		record := result.Record()
		address, _, err := neo4j.GetRecordValue[string](record, "address")
		if err != nil {
			return nil, err
		}
		count, _, err := neo4j.GetRecordValue[int64](record, "count")
		if err != nil {
			return nil, err
		}
		rows = append(rows, out.SenderCount{Address: address, Count: count})
	}
	return rows, result.Err()
}

// NormalizeSender extracts a lower-cased address from display or bare form.
func NormalizeSender(sender string) string {
	sender = strings.TrimSpace(sender)
	if sender == "" {
		return ""
	}
	if addr, err := mail.ParseAddress(sender); err == nil {
		return strings.ToLower(addr.Address)
	}
	return strings.ToLower(sender)
}

var _ out.ResultSink = (*SenderGraphSink)(nil)
var _ out.SenderRanking = (*SenderGraphSink)(nil)
