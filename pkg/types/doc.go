// Package types defines the core data model shared by all vendorgraph
// packages: vendors, products, document chunks, relationship confidence
// levels, metadata filters and retrieval result shapes.
package types
