// Package audit keeps a local, append-only record of the mutations performed
// against the gateway. Listing operations are not recorded. The trail is a
// convenience for operators - a failed audit write never fails the operation.
package audit

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"

	"github.com/bvignesz/Network-automation/mutate"
)

const bucket = "mutations"

// Entry is one recorded mutation.
type Entry struct {
	Time      time.Time `json:"time"`
	Operation string    `json:"operation"`
	RuleID    int       `json:"ruleId"`
	RuleName  string    `json:"ruleName"`
	Field     string    `json:"field"`
	Previous  string    `json:"previous"`
	Updated   string    `json:"updated"`
}

// Trail is the bolt-backed audit store.
type Trail struct {
	db  *bolt.DB
	now func() time.Time
}

// Open the trail db, creating the directory and bucket as needed.
func Open(dbFile string) (t *Trail, err error) {
	if err = os.MkdirAll(filepath.Dir(dbFile), 0755); err != nil {
		return
	}
	db, err := bolt.Open(dbFile, 0600, &bolt.Options{Timeout: 30 * time.Second})
	if err != nil {
		return
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	})
	if err != nil {
		db.Close()
	} else {
		t = &Trail{db: db, now: time.Now}
	}
	return
}

// Close the trail
func (t *Trail) Close() error {
	return t.db.Close()
}

// Record appends one outcome to the trail.
func (t *Trail) Record(out *mutate.Outcome) error {
	e := &Entry{
		Time:      t.now().UTC(),
		Operation: out.Operation,
		RuleID:    out.RuleID,
		RuleName:  out.RuleName,
		Field:     out.Field,
		Previous:  out.Previous,
		Updated:   out.Updated,
	}
	return t.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		return b.Put(key(seq), data)
	})
}

// Entries returns the recorded mutations in insertion order.
func (t *Trail) Entries() (entries []*Entry, err error) {
	entries = make([]*Entry, 0)
	err = t.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		return b.ForEach(func(k, v []byte) error {
			e := &Entry{}
			if err := json.Unmarshal(v, e); err != nil {
				return err
			}
			entries = append(entries, e)
			return nil
		})
	})
	return
}

// Big-endian keys keep bolt iteration in insertion order.
func key(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}
