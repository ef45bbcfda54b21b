// Package dto defines the request and response shapes of the HTTP API.
package dto

import (
	"errors"
	"strings"
	"time"
)

// MaxQueryLength caps free-text query size.
const MaxQueryLength = 4096

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
}

// Validate performs validation on SearchRequest.
func (r *SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return errors.New("query cannot be empty")
	}
	if len(r.Query) > MaxQueryLength {
		return errors.New("query too long")
	}
	return nil
}

// IngestRequest is the body of POST /ingest/documents.
type IngestRequest struct {
	SourceID string     `json:"source_id,omitempty"`
	Vendor   string     `json:"vendor"`
	Products []string   `json:"products,omitempty"`
	Types    []string   `json:"types,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
	Text     string     `json:"text" binding:"required"`
}

// Validate performs validation on IngestRequest.
func (r *IngestRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return errors.New("text cannot be empty")
	}
	return nil
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StatusResponse reports the outcome of a mutation.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Count   int    `json:"count,omitempty"`
}
