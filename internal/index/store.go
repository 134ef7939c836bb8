package index

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// doc is the bleve document shape persisted for both types and methods; the
// fields not relevant to a given DocType are left zero.
type doc struct {
	Name       string `json:"name"`
	LocalName  string `json:"localName"`
	LocalTags  string `json:"localNameTags"`
	Tags       string `json:"tags"`
	DeclaredAs string `json:"declaredAs"`
	DocType    string `json:"docType"`
	Owner      string `json:"owner,omitempty"`
	File       string `json:"file,omitempty"`
	Offset     int    `json:"offset"`
}

// Store owns the on-disk bleve index. The meta.json commit metadata that
// gates the re-index decision is read and written by Indexer, not Store.
type Store struct {
	path  string
	index bleve.Index
}

// Open opens (or, on first use, builds) the bleve index at path.
func Open(path string) (*Store, error) {
	idx, err := bleve.Open(path)
	if err == nil {
		return &Store{path: path, index: idx}, nil
	}

	idx, err = bleve.New(path, buildMapping())
	if err != nil {
		return nil, fmt.Errorf("index: create store at %s: %w", path, err)
	}
	return &Store{path: path, index: idx}, nil
}

// Reset tears down and recreates the on-disk index directory from scratch.
func Reset(path string) (*Store, error) {
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("index: remove %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	idx, err := bleve.New(path, buildMapping())
	if err != nil {
		return nil, fmt.Errorf("index: create store at %s: %w", path, err)
	}
	return &Store{path: path, index: idx}, nil
}

// buildMapping defines the analyzer fields queried by KeywordSearch and
// ImportSuggestions: a raw name field, a camelCase-tokenized localNameTags
// field, and keyword fields for exact docType/declaredAs filtering.
func buildMapping() *mapping.IndexMappingImpl {
	keyword := bleve.NewTextFieldMapping()
	keyword.Analyzer = "keyword"

	standard := bleve.NewTextFieldMapping()
	standard.Analyzer = "standard"

	num := bleve.NewNumericFieldMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("name", keyword)
	docMapping.AddFieldMappingsAt("localName", standard)
	docMapping.AddFieldMappingsAt("localNameTags", standard)
	docMapping.AddFieldMappingsAt("tags", standard)
	docMapping.AddFieldMappingsAt("declaredAs", keyword)
	docMapping.AddFieldMappingsAt("docType", keyword)
	docMapping.AddFieldMappingsAt("owner", keyword)
	docMapping.AddFieldMappingsAt("file", keyword)
	docMapping.AddFieldMappingsAt("offset", num)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = docMapping
	return im
}

// Close releases the underlying bleve index handle.
func (s *Store) Close() error {
	return s.index.Close()
}

// Path returns the on-disk directory backing the store.
func (s *Store) Path() string {
	return s.path
}

// docID is the stable bleve document identifier for a Result: its fully
// qualified name, disambiguated by DocType so a type and a like-named
// method never collide.
func docID(r Result) string {
	return string(r.DocType()) + ":" + r.Name
}

// Insert indexes r, replacing any existing document with the same identity.
func (s *Store) Insert(r Result) error {
	d := doc{
		Name:       r.Name,
		LocalName:  r.LocalName,
		LocalTags:  LocalNameTags(r.LocalName),
		Tags:       Tokenize(r.Name),
		DeclaredAs: string(r.DeclaredAs),
		DocType:    string(r.DocType()),
		Owner:      r.Owner,
	}
	if r.Pos != nil {
		d.File = r.Pos.File
		d.Offset = r.Pos.Offset
	}
	return s.index.Index(docID(r), d)
}

// Remove deletes the document for r, if present.
func (s *Store) Remove(r Result) error {
	return s.index.Delete(docID(r))
}

// Commit is a no-op under bleve's single-segment-per-Index-call model;
// every Insert/Remove above is already durable on return. It exists as an
// explicit pipeline step so callers (and tests) can mark "end of batch"
// without depending on that implementation detail.
func (s *Store) Commit() error {
	return nil
}
