// Package audit provides an append-only trail of field-level statement
// changes. Entries are hash-chained so a persisted log can be checked for
// tampering, and serialize one record per line for the persistence layer.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ChangeType classifies what kind of field a change touched.
type ChangeType string

const (
	ChangeTypeHeader      ChangeType = "header"
	ChangeTypeTransaction ChangeType = "transaction"
	ChangeTypeCalculation ChangeType = "calculation"
)

// DefaultUserID is recorded when the caller does not attribute a change.
const DefaultUserID = "system"

// Entry is one recorded field change. PreviousHash and Hash chain entries
// together: each hash covers the previous hash, the timestamp and the change
// payload.
type Entry struct {
	Timestamp        time.Time  `json:"timestamp"`
	UserID           string     `json:"user_id"`
	FieldName        string     `json:"field_name"`
	OldValue         any        `json:"old_value"`
	NewValue         any        `json:"new_value"`
	TransactionIndex *int       `json:"transaction_index,omitempty"`
	ChangeType       ChangeType `json:"change_type"`
	PreviousHash     string     `json:"previous_hash"`
	Hash             string     `json:"hash"`
}

// Summary aggregates a trail for API responses.
type Summary struct {
	TotalChanges  int                `json:"total_changes"`
	ChangesByType map[ChangeType]int `json:"changes_by_type"`
	Changes       []Entry            `json:"changes"`
}

// Trail is an ordered, append-only sequence of change records. Append is the
// only mutation; prior entries are never edited or removed. The trail infers
// nothing: the edit-processing caller is responsible for logging once per
// logical field change.
type Trail struct {
	mu           sync.Mutex
	entries      []Entry
	previousHash string
}

// NewTrail creates an empty trail seeded with a zero hash.
func NewTrail() *Trail {
	return &Trail{previousHash: strings.Repeat("0", 64)}
}

// Append records one field change and links it into the hash chain.
func (t *Trail) Append(fieldName string, oldValue, newValue any, changeType ChangeType, transactionIndex *int, userID string) Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	if userID == "" {
		userID = DefaultUserID
	}

	entry := Entry{
		Timestamp:        time.Now().UTC(),
		UserID:           userID,
		FieldName:        fieldName,
		OldValue:         oldValue,
		NewValue:         newValue,
		TransactionIndex: transactionIndex,
		ChangeType:       changeType,
		PreviousHash:     t.previousHash,
	}
	entry.Hash = entryHash(entry)

	t.previousHash = entry.Hash
	t.entries = append(t.entries, entry)
	return entry
}

// Entries returns a copy of the recorded changes in append order.
func (t *Trail) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of recorded changes.
func (t *Trail) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Summarize returns the total count, a per-type breakdown and the entries.
func (t *Trail) Summarize() Summary {
	entries := t.Entries()

	counts := make(map[ChangeType]int)
	for _, e := range entries {
		counts[e.ChangeType]++
	}

	return Summary{
		TotalChanges:  len(entries),
		ChangesByType: counts,
		Changes:       entries,
	}
}

// WriteTo serializes the trail as JSONL, one entry per line, for the audit
// persistence collaborator.
func (t *Trail) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for _, e := range t.Entries() {
		line, err := json.Marshal(e)
		if err != nil {
			return written, fmt.Errorf("audit: marshal entry: %w", err)
		}
		n, err := w.Write(append(line, '\n'))
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("audit: write entry: %w", err)
		}
	}
	return written, nil
}

// VerifyChain checks that a sequence of entries forms a valid hash chain.
func VerifyChain(entries []Entry) bool {
	for i, entry := range entries {
		if i > 0 && entry.PreviousHash != entries[i-1].Hash {
			return false
		}
		if entryHash(entry) != entry.Hash {
			return false
		}
	}
	return true
}

func entryHash(e Entry) string {
	index := "none"
	if e.TransactionIndex != nil {
		index = fmt.Sprintf("%d", *e.TransactionIndex)
	}
	payload := fmt.Sprintf("%s|%s|%v|%v|%s|%s|%s",
		e.FieldName, e.ChangeType, e.OldValue, e.NewValue, e.UserID, index, e.Timestamp.Format(time.RFC3339Nano))
	input := e.PreviousHash + "|" + payload
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
