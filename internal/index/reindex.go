package index

// IndexVersion tags every commit's persisted user metadata. Bump this when
// the document schema or analyzer changes in a way that invalidates old
// on-disk indexes.
const IndexVersion = 5

// Metadata is the committed, atomically-written user metadata: the schema
// version and a map from absolute source-file path to its content hash.
type Metadata struct {
	IndexVersion int
	FileHashes   map[string]string
}

// ShouldReindex decides whether a rebuild is needed: true iff the on-disk
// version is stale, or the proposed hash set contains any path/hash pair not
// already recorded on disk (a new path, or a known path with a changed
// hash). Deliberately conservative: unknown-hash files force a reindex;
// known files that have since disappeared do not.
func ShouldReindex(onDiskVersion int, onDisk, proposed map[string]string) bool {
	if onDiskVersion < IndexVersion {
		return true
	}
	for path, hash := range proposed {
		if onDiskHash, ok := onDisk[path]; !ok || onDiskHash != hash {
			return true
		}
	}
	return false
}
