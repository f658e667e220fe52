// Package keyword provides a Bleve full-text index over uploaded
// report text.
package keyword

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
)

// ReportDoc is the indexed shape of one upload.
type ReportDoc struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
	User     string `json:"user"`
}

// Result is one search hit: the upload id and its relevance score.
type Result struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// ReportIndex indexes uploaded report text for keyword search.
type ReportIndex struct {
	index bleve.Index
}

// NewReportIndex creates or opens a Bleve index at path. An existing
// index is opened and reused; remove the directory to force a rebuild
// after a mapping change.
func NewReportIndex(path string) (*ReportIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so terms
	// like "humidity" match exactly.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("filename", textFieldMapping)
	userFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("user", userFieldMapping)
	im.AddDocumentMapping("report", docMapping)
	im.DefaultType = "report"
	im.DefaultMapping = docMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open report index: %w", openErr)
		}
		return &ReportIndex{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create report index: %w", err)
	}
	return &ReportIndex{index: index}, nil
}

// Index indexes one upload's text under its upload id.
func (r *ReportIndex) Index(ctx context.Context, id string, doc *ReportDoc) error {
	return r.index.Index(id, doc)
}

// Search returns up to limit uploads of user matching the query over
// content and filename.
func (r *ReportIndex) Search(ctx context.Context, user, query string, limit int) ([]*Result, error) {
	match := bleve.NewMatchQuery(query)
	userQuery := bleve.NewTermQuery(user)
	userQuery.SetField("user")
	q := bleve.NewConjunctionQuery(userQuery, match)

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	results, err := r.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("report search failed: %w", err)
	}
	out := make([]*Result, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &Result{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// Delete removes an upload from the index.
func (r *ReportIndex) Delete(ctx context.Context, id string) error {
	return r.index.Delete(id)
}

// DocCount returns the number of indexed uploads.
func (r *ReportIndex) DocCount() (uint64, error) {
	return r.index.DocCount()
}

// Close closes the index.
func (r *ReportIndex) Close() error {
	return r.index.Close()
}
