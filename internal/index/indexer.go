package index

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// Indexer is the mailbox-driven actor owning the on-disk Store and the
// writer pipeline lifecycle. It is the sole owner of its Store; callers
// reach it only through its exported methods, which it runs on the calling
// goroutine because the indexer has no cross-request state to serialize —
// concurrency safety instead comes from the writer pipeline's own
// producer/consumer handoff during Initialize.
type Indexer struct {
	dir    string
	store  *Store
	memo   *LevenshteinMemo
	onDisk map[string]string
}

// NewIndexer creates an indexer rooted at dir, where dir holds both the
// bleve index directory and the committed metadata file.
func NewIndexer(dir string) *Indexer {
	return &Indexer{dir: dir, memo: NewLevenshteinMemo(), onDisk: map[string]string{}}
}

func (ix *Indexer) indexDir() string { return ix.dir + "/bleve" }
func (ix *Indexer) metaPath() string { return ix.dir + "/meta.json" }

// Initialize decides whether to re-index from the on-disk version and
// file-hash metadata; if so, tears down and rebuilds via the classpath
// walker/writer pipeline, then commits user-metadata atomically.
func (ix *Indexer) Initialize(classpath []string, includes, excludes []*regexp.Regexp, proposedHashes map[string]string) error {
	onDiskVersion, onDiskHashes, err := ix.readMeta()
	if err != nil {
		return fmt.Errorf("index: read metadata: %w", err)
	}

	if !ShouldReindex(onDiskVersion, onDiskHashes, proposedHashes) {
		store, err := Open(ix.indexDir())
		if err != nil {
			return err
		}
		ix.store = store
		ix.onDisk = onDiskHashes
		return nil
	}

	store, err := Reset(ix.indexDir())
	if err != nil {
		return err
	}
	ix.store = store

	mailbox := make(chan interface{}, 4096)
	done := make(chan struct{})
	go func() {
		RunWriter(store, mailbox)
		close(done)
	}()

	if err := Walk(classpath, WalkOptions{OnlyInclude: includes, Exclude: excludes}, mailbox); err != nil {
		close(mailbox)
		<-done
		return fmt.Errorf("index: walk: %w", err)
	}
	close(mailbox)
	<-done

	ix.onDisk = proposedHashes
	return ix.writeMeta(IndexVersion, proposedHashes)
}

// Insert upserts a single result.
func (ix *Indexer) Insert(r Result) error {
	return ix.store.Insert(r)
}

// Remove deletes by exact name. Since removal needs DocType to compute the
// document identifier, both shapes are removed; at most one will have
// existed.
func (ix *Indexer) Remove(name string) error {
	if err := ix.store.Remove(Result{Name: name, DeclaredAs: DeclaredClass}); err != nil {
		return err
	}
	return ix.store.Remove(Result{Name: name, DeclaredAs: DeclaredMethod})
}

// KeywordSearch delegates to the underlying Store.
func (ix *Indexer) KeywordSearch(keywords []string, limit int, typesOnly, fuzzy bool) ([]Result, error) {
	return ix.store.KeywordSearch(keywords, limit, typesOnly, fuzzy)
}

// ImportSuggestions delegates to the underlying Store, reusing this
// indexer's run-scoped Levenshtein memo.
func (ix *Indexer) ImportSuggestions(typeNames []string, limit int) (map[string][]Result, error) {
	return ix.store.ImportSuggestions(typeNames, limit, ix.memo)
}

// Commit flushes outstanding writes.
func (ix *Indexer) Commit() error {
	return ix.store.Commit()
}

// Close releases the underlying bleve handle; callers use this when the
// indexer actor itself is shutting down.
func (ix *Indexer) Close() error {
	if ix.store == nil {
		return nil
	}
	return ix.store.Close()
}

func (ix *Indexer) readMeta() (int, map[string]string, error) {
	data, err := readFileIfExists(ix.metaPath())
	if err != nil {
		return 0, nil, err
	}
	if data == nil {
		return 0, map[string]string{}, nil
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return 0, nil, fmt.Errorf("index: decode metadata: %w", err)
	}
	if m.FileHashes == nil {
		m.FileHashes = map[string]string{}
	}
	return m.IndexVersion, m.FileHashes, nil
}

func (ix *Indexer) writeMeta(version int, hashes map[string]string) error {
	m := Metadata{IndexVersion: version, FileHashes: hashes}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return writeFileAtomic(ix.metaPath(), data)
}
