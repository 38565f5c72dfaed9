package badger

import (
	"encoding/binary"

	"github.com/poiesic/vecspool/core"
)

// Key prefixes for different data types
const (
	documentPrefix   = "doc:"
	buildStatePrefix = "bst:"
)

// makeDocumentKey generates a key for a document by ID.
// Format: prefix + 8 byte big-endian ID, so iteration order is ID order.
func makeDocumentKey(id core.ID) []byte {
	buf := make([]byte, len(documentPrefix)+8)
	offset := copy(buf, documentPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// documentIDFromKey extracts the document ID from a document key.
func documentIDFromKey(key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(documentPrefix):]))
}

// makeBuildStateKey generates a key for the build state of a vectors identifier.
func makeBuildStateKey(vectorsID string) []byte {
	return []byte(buildStatePrefix + vectorsID)
}
