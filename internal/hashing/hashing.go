// Package hashing provides duplicate detection for scanned game records.
package hashing

import (
	"bytes"

	"github.com/cespare/xxhash/v2"

	"github.com/lgbarn/pgn-scan/internal/chess"
)

// HashType specifies what identifies a game for duplicate detection.
type HashType int

const (
	// HashGameID uses the lichess game id and falls back to HashRecord for
	// games without one.
	HashGameID HashType = iota
	// HashRecord hashes the whole record text.
	HashRecord
	// HashMoveText hashes only the text after the header block, so the same
	// game with different tags is still a duplicate.
	HashMoveText
)

// String returns the flag name of the hash type.
func (ht HashType) String() string {
	switch ht {
	case HashGameID:
		return "id"
	case HashRecord:
		return "record"
	case HashMoveText:
		return "moves"
	default:
		return "unknown"
	}
}

// ParseHashType maps a flag name back to its HashType.
func ParseHashType(s string) (HashType, bool) {
	for _, ht := range []HashType{HashGameID, HashRecord, HashMoveText} {
		if ht.String() == s {
			return ht, true
		}
	}
	return HashGameID, false
}

// GameSignature identifies a game.
type GameSignature struct {
	// Hash is the xxhash of the identifying text.
	Hash uint64
	// Length is the length of the identifying text, a cheap second check
	// against hash collisions.
	Length int
}

// Sign computes the signature of a game under ht.
func Sign(game *chess.Game, ht HashType) GameSignature {
	switch ht {
	case HashGameID:
		if id, err := game.ID(); err == nil {
			return GameSignature{Hash: xxhash.Sum64String(id), Length: len(id)}
		}
		return Sign(game, HashRecord)
	case HashMoveText:
		text := moveText(game.Raw)
		return GameSignature{Hash: xxhash.Sum64(text), Length: len(text)}
	default:
		text := bytes.TrimSpace(game.Raw)
		return GameSignature{Hash: xxhash.Sum64(text), Length: len(text)}
	}
}

// moveText returns the record text following its tag lines.
func moveText(raw []byte) []byte {
	rest := bytes.TrimSpace(raw)
	for len(rest) > 0 && rest[0] == '[' {
		nl := bytes.IndexByte(rest, '\n')
		if nl < 0 {
			return nil
		}
		rest = bytes.TrimLeft(rest[nl+1:], " \t\r\n")
	}
	return rest
}

// DuplicateDetector tracks signatures of seen games.
type DuplicateDetector struct {
	hashTable      map[uint64][]GameSignature
	hashType       HashType
	maxCapacity    int
	size           int
	duplicateCount int
}

// NewDuplicateDetector creates a new duplicate detector.
// maxCapacity of 0 means unlimited capacity; once full, games are still
// checked against the table but no longer added.
func NewDuplicateDetector(ht HashType, maxCapacity int) *DuplicateDetector {
	return &DuplicateDetector{
		hashTable:   make(map[uint64][]GameSignature),
		hashType:    ht,
		maxCapacity: maxCapacity,
	}
}

// CheckAndAdd checks if a game is a duplicate and adds it to the hash table.
// Returns true if the game is a duplicate.
func (d *DuplicateDetector) CheckAndAdd(game *chess.Game) bool {
	sig := Sign(game, d.hashType)

	for _, existing := range d.hashTable[sig.Hash] {
		if existing == sig {
			d.duplicateCount++
			return true
		}
	}

	if !d.IsFull() {
		d.hashTable[sig.Hash] = append(d.hashTable[sig.Hash], sig)
		d.size++
	}
	return false
}

// DuplicateCount returns the number of duplicates detected.
func (d *DuplicateDetector) DuplicateCount() int {
	return d.duplicateCount
}

// UniqueCount returns the number of remembered games.
func (d *DuplicateDetector) UniqueCount() int {
	return d.size
}

// IsFull reports whether the capacity limit has been reached.
func (d *DuplicateDetector) IsFull() bool {
	return d.maxCapacity > 0 && d.size >= d.maxCapacity
}
