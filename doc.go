// Package vendorgraph provides a hybrid retrieval engine for vendor
// communications, combining a vector store with a Neo4j knowledge graph.
//
// Free-text queries are parsed into structured filters, answered by
// similarity search with a graph-side fallback, enriched with relationship
// context and re-ranked by graph signals. Vendor-product relationships
// carry validated confidence levels and only sufficiently confident ones
// are persisted to the graph.
//
// # Basic Usage
//
// Create an engine with a graph store, a vector store and an embedder:
//
//	// Connect to Neo4j
//	graphStore, err := graph.NewNeo4jStore(ctx, "bolt://localhost:7687", "neo4j", "password", "neo4j")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Open the local vector store
//	vectors, err := vector.OpenBadgerStore("./vendorgraph_db", logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Create embedder
//	embConfig := embedder.Config{Model: "text-embedding-3-small"}
//	emb, err := embedder.NewOpenAIClient(os.Getenv("OPENAI_API_KEY"), embConfig)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load the vendor catalog used for high-confidence validation
//	catalog, err := relationship.LoadCatalog("catalog.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	engine, err := vendorgraph.New(graphStore, vectors, emb, catalog, vendorgraph.Options{}, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer engine.Close(ctx)
//
// # Ingesting Documents
//
// Documents are chunked, embedded and written to both stores. Vendor and
// product relationships are validated before being persisted:
//
//	err = engine.Ingest(ctx, ingest.SourceDocument{
//		SourceID: "hashicorp-2024-06",
//		Vendor:   "HashiCorp",
//		Products: []string{"Vault"},
//		Types:    []string{"security"},
//		Date:     time.Now(),
//		Text:     "HashiCorp announces a critical security update for Vault...",
//	})
//
// # Searching
//
// Search extracts filters from the query text, retrieves matching chunks
// and re-ranks them with graph signals:
//
//	result, err := engine.Search(ctx, "recent security updates from HashiCorp")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, hit := range result.Results {
//		fmt.Println(hit.Metadata.SourceID, hit.Score)
//	}
package vendorgraph
