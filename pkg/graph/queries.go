package graph

import (
	"strings"

	"github.com/terasky/vendorgraph/pkg/types"
)

// Schema queries. Vendor and product identity is the normalized name;
// document identity is the source id. Upserts merge on these keys so
// repeated imports never duplicate.
var schemaQueries = []string{
	"CREATE CONSTRAINT vendor_name IF NOT EXISTS FOR (v:Vendor) REQUIRE v.name IS UNIQUE",
	"CREATE CONSTRAINT product_name IF NOT EXISTS FOR (p:Product) REQUIRE p.name IS UNIQUE",
	"CREATE CONSTRAINT document_id IF NOT EXISTS FOR (d:Document) REQUIRE d.id IS UNIQUE",
	"CREATE INDEX document_date IF NOT EXISTS FOR (d:Document) ON (d.date)",
	"CREATE INDEX document_type IF NOT EXISTS FOR (d:Document) ON (d.type)",
}

const relatedProductsQuery = `
MATCH (d:Document)-[:ABOUT]->(p:Product)
WHERE d.id IN $source_ids
RETURN p.name AS name, count(d) AS count
ORDER BY count DESC`

const relatedVendorsQuery = `
MATCH (d:Document)-[:FROM]->(v:Vendor)
WHERE d.id IN $source_ids
RETURN v.name AS name, count(d) AS count
ORDER BY count DESC`

const importanceQuery = `
MATCH (d:Document)
WHERE d.id IN $source_ids
OPTIONAL MATCH (d)-[:ABOUT]->(p:Product)
WITH d, count(DISTINCT p) AS product_count
RETURN d.id AS source_id, product_count, d.date AS date`

const vendorProductsQuery = `
MATCH (v:Vendor)-[r:OFFERS]->(p:Product)
WHERE toLower(v.name) CONTAINS toLower($vendor)
AND r.confidence IN $confidence_levels
RETURN v.name AS vendor, p.name AS product, r.confidence AS confidence
ORDER BY r.rank DESC`

const mergeVendorQuery = `MERGE (v:Vendor {name: $name})`

const mergeProductQuery = `MERGE (p:Product {name: $name})`

const mergeDocumentQuery = `
MERGE (d:Document {id: $id})
SET d.date = $date, d.type = $type`

const mergeFromEdgeQuery = `
MATCH (d:Document {id: $id}), (v:Vendor {name: $vendor})
MERGE (d)-[:FROM]->(v)`

const mergeAboutEdgeQuery = `
MATCH (d:Document {id: $id}), (p:Product {name: $product})
MERGE (d)-[:ABOUT]->(p)`

// mergeOffersQuery upserts the derived edge with monotonic confidence:
// at most one edge per pair, and a later weaker signal never downgrades a
// stronger one. The numeric rank is persisted so ordering and the
// monotonic comparison never depend on string collation.
const mergeOffersQuery = `
MATCH (v:Vendor {name: $vendor}), (p:Product {name: $product})
MERGE (v)-[r:OFFERS]->(p)
ON CREATE SET r.confidence = $confidence, r.rank = $rank
ON MATCH SET
  r.confidence = CASE WHEN coalesce(r.rank, 0) >= $rank THEN r.confidence ELSE $confidence END,
  r.rank = CASE WHEN coalesce(r.rank, 0) >= $rank THEN r.rank ELSE $rank END`

const listOffersQuery = `
MATCH (v:Vendor)-[r:OFFERS]->(p:Product)
RETURN v.name AS vendor, p.name AS product, r.confidence AS confidence`

const deleteOffersQuery = `
MATCH (v:Vendor {name: $vendor})-[r:OFFERS]->(p:Product {name: $product})
DELETE r`

const nodeStatsQuery = `
MATCH (n)
WHERE n:Vendor OR n:Product OR n:Document
RETURN labels(n)[0] AS kind, count(n) AS count`

const edgeStatsQuery = `
MATCH ()-[r]->()
RETURN type(r) AS kind, count(r) AS count`

const resetQuery = `
MATCH (n)
WHERE n:Vendor OR n:Product OR n:Document
DETACH DELETE n`

// BuildFallbackQuery assembles the graph-side candidate query used when
// similarity search comes back empty. Clauses are added only for the
// constraints actually present, mirroring what an equivalent hand-written
// query over the same filters would match.
func BuildFallbackQuery(params types.QueryParams, limit int) (string, map[string]any) {
	var b strings.Builder
	b.WriteString("MATCH (d:Document)\n")

	queryParams := map[string]any{"limit": limit}
	var where []string

	if params.DaySpan > 0 {
		where = append(where, "d.date > datetime() - duration({days: $days})")
		queryParams["days"] = params.DaySpan
	}
	if params.Vendor != "" {
		b.WriteString("MATCH (d)-[:FROM]->(v:Vendor)\n")
		where = append(where, "v.name = $vendor")
		queryParams["vendor"] = params.Vendor
	}
	if params.Product != "" {
		b.WriteString("MATCH (d)-[:ABOUT]->(p:Product)\n")
		where = append(where, "p.name CONTAINS $product")
		queryParams["product"] = params.Product
	}

	if len(where) > 0 {
		b.WriteString("WHERE ")
		b.WriteString(strings.Join(where, " AND "))
		b.WriteString("\n")
	}

	b.WriteString("RETURN DISTINCT d.id AS id, d.date AS date, d.type AS type\n")
	b.WriteString("ORDER BY d.date DESC\nLIMIT $limit")

	return b.String(), queryParams
}
