package cache

import (
	"bytes"
	"encoding/gob"
)

// CacheVersion is incremented when the entry format changes.
const CacheVersion = 1

// Entry records the state of a file after a completed optimization.
// A file whose size and mtime still match its entry has already been
// through Ghostscript and will not shrink further.
type Entry struct {
	Size        int64 // File size in bytes after optimization
	Mtime       int64 // Modification time as UnixNano
	OptimizedAt int64 // When the optimization ran, as Unix seconds
}

// Encode serializes the entry to bytes using gob.
func (e *Entry) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes bytes into the entry using gob.
func (e *Entry) Decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(e)
}
