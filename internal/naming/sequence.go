package naming

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SequenceCounter backs the sequential naming policy with a number that is
// durable across restarts: each draw is persisted before it is handed out,
// so a crash can skip numbers but never reuse one. Safe for concurrent use.
type SequenceCounter struct {
	mu   sync.Mutex
	path string
	next int
}

type sequenceState struct {
	Next int `json:"next"`
}

// OpenSequenceCounter loads (or initializes) the counter state file at path.
func OpenSequenceCounter(path string) (*SequenceCounter, error) {
	c := &SequenceCounter{path: path, next: 1}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sequence state %q: %w", path, err)
	}

	var st sequenceState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse sequence state %q: %w", path, err)
	}
	if st.Next > 0 {
		c.next = st.Next
	}
	return c, nil
}

// Next returns the next sequence number, persisting the advanced state
// before returning it.
func (c *SequenceCounter) Next() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.next
	if err := c.persist(n + 1); err != nil {
		return 0, err
	}
	c.next = n + 1
	return n, nil
}

// persist writes the state atomically: temp file in the same directory, then
// rename over the target.
func (c *SequenceCounter) persist(next int) error {
	data, err := json.Marshal(sequenceState{Next: next})
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".sequence-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
