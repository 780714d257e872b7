package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/noesis/core"
)

// Key prefixes for different data types. Every prefix used for iteration
// ends in ':' so no prefix is a prefix of another.
const (
	thoughtPrefix          = "thorec"
	thoughtDatePrefix      = "thorecd:"
	thoughtUserDatePrefix  = "thorecu:"
	thoughtUserVecPrefix   = "thorecv:"
	thoughtIDSeq           = "thorecseq"
	connectionPrefix       = "conrec:"
	connectionAdjacencyPre = "conadj:"
)

// makeThoughtKey generates a key for a thought by ID.
func makeThoughtKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", thoughtPrefix, id))
}

// appendUint64 writes v in BigEndian order so lexicographic sort works correctly.
func appendUint64(buf []byte, v uint64) []byte {
	return binary.BigEndian.AppendUint64(buf, v)
}

func composite(prefix string, parts ...uint64) []byte {
	buf := make([]byte, 0, len(prefix)+8*len(parts))
	buf = append(buf, prefix...)
	for _, p := range parts {
		buf = appendUint64(buf, p)
	}
	return buf
}

// micros clamps times before the epoch to zero so open-ended range scans
// still seek to the start of an index.
func micros(t time.Time) uint64 {
	return uint64(max(t.UnixMicro(), 0))
}

// makeThoughtDateKey generates a composite key for the global date index.
// Format: prefix:timestamp:id
func makeThoughtDateKey(createdAt time.Time, id core.ID) []byte {
	return composite(thoughtDatePrefix, micros(createdAt), uint64(id))
}

// makePartialThoughtDateKey generates a partial key for date range queries.
func makePartialThoughtDateKey(t time.Time) []byte {
	return composite(thoughtDatePrefix, micros(t))
}

// makeUserDateKey generates a composite key for the per-user date index.
// Format: prefix:userKey:timestamp:id
func makeUserDateKey(userID string, createdAt time.Time, id core.ID) []byte {
	return composite(thoughtUserDatePrefix, uint64(core.UserKey(userID)), micros(createdAt), uint64(id))
}

// makePartialUserDateKey generates a partial key for per-user date range queries.
func makePartialUserDateKey(userID string, t time.Time) []byte {
	return composite(thoughtUserDatePrefix, uint64(core.UserKey(userID)), micros(t))
}

// makeUserVectorKey generates a key for a thought's embedding in the
// per-user vector index.
// Format: prefix:userKey:id
func makeUserVectorKey(userID string, id core.ID) []byte {
	return composite(thoughtUserVecPrefix, uint64(core.UserKey(userID)), uint64(id))
}

// makeUserVectorPrefix generates the iteration prefix for one user's vectors.
func makeUserVectorPrefix(userID string) []byte {
	return composite(thoughtUserVecPrefix, uint64(core.UserKey(userID)))
}

// vectorKeyID extracts the trailing thought ID from a vector or adjacency key.
func vectorKeyID(key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
}

// makeConnectionKey generates the key for a canonical pair.
// Format: prefix:thoughtA:thoughtB
func makeConnectionKey(a, b core.ID) []byte {
	return composite(connectionPrefix, uint64(a), uint64(b))
}

// makeAdjacencyKey generates an adjacency entry pointing from one endpoint
// to the other.
// Format: prefix:from:to
func makeAdjacencyKey(from, to core.ID) []byte {
	return composite(connectionAdjacencyPre, uint64(from), uint64(to))
}

// makeAdjacencyPrefix generates the iteration prefix for a thought's edges.
func makeAdjacencyPrefix(from core.ID) []byte {
	return composite(connectionAdjacencyPre, uint64(from))
}
