package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the lowercase hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SeenHashes is the per-run set of content hashes already saved.
// It is not safe for concurrent use; a run touches it from one goroutine.
type SeenHashes struct {
	seen map[string]struct{}
}

func NewSeenHashes() *SeenHashes {
	return &SeenHashes{seen: make(map[string]struct{})}
}

func (s *SeenHashes) Seen(hash string) bool {
	_, ok := s.seen[hash]
	return ok
}

func (s *SeenHashes) Mark(hash string) {
	s.seen[hash] = struct{}{}
}

func (s *SeenHashes) Len() int {
	return len(s.seen)
}
