package datacapture

import (
	"encoding/json"
	"fmt"
	"sync"
)

// WriteMode controls what Store.Write does when a collector's segment is
// full (data_store.rs's WriteMode).
type WriteMode int

const (
	// PreserveOrFail rejects the write rather than drop an unread reading.
	PreserveOrFail WriteMode = iota
	// OverwriteOldest drops the oldest unread reading(s) to make room.
	OverwriteOldest
)

// ErrBufferFull is returned by Write under PreserveOrFail when a segment has
// no room for the new reading.
type ErrBufferFull struct {
	Key ResourceMethodKey
}

func (e *ErrBufferFull) Error() string {
	return fmt.Sprintf("datacapture: buffer full for %s", e.Key)
}

type segment struct {
	capacity int
	used     int
	entries  []sizedReading
}

type sizedReading struct {
	reading Reading
	bytes   int
}

// Store is a fixed-capacity, per-collector ring buffer of captured readings
// (data_store.rs's StaticMemoryDataStore, generalized from one static byte
// arena sliced at construction time into one Go map of independently sized
// segments, since Go has no equivalent need to preallocate a single static
// array up front).
type Store struct {
	mu       sync.Mutex
	segments map[ResourceMethodKey]*segment
}

// NewStore returns a Store with one segment per collector, sized to that
// collector's Capacity.
func NewStore(collectors []*Collector) *Store {
	s := &Store{segments: make(map[ResourceMethodKey]*segment, len(collectors))}
	for _, c := range collectors {
		s.segments[c.Key()] = &segment{capacity: c.Capacity()}
	}
	return s
}

func readingSize(r Reading) (int, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return 0, fmt.Errorf("datacapture: sizing reading: %w", err)
	}
	return len(b), nil
}

// Write appends reading to key's segment, evicting the oldest entries first
// when mode is OverwriteOldest and there isn't room. It returns
// ErrBufferFull under PreserveOrFail when there isn't room even after
// considering eviction.
func (s *Store) Write(key ResourceMethodKey, reading Reading, mode WriteMode) error {
	size, err := readingSize(reading)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	seg, ok := s.segments[key]
	if !ok {
		return fmt.Errorf("datacapture: unknown collector key %s", key)
	}
	if size > seg.capacity {
		return fmt.Errorf("datacapture: reading for %s (%d bytes) exceeds segment capacity (%d bytes)", key, size, seg.capacity)
	}

	for seg.used+size > seg.capacity {
		if len(seg.entries) == 0 {
			break
		}
		if mode != OverwriteOldest {
			return &ErrBufferFull{Key: key}
		}
		oldest := seg.entries[0]
		seg.entries = seg.entries[1:]
		seg.used -= oldest.bytes
	}

	seg.entries = append(seg.entries, sizedReading{reading: reading, bytes: size})
	seg.used += size
	return nil
}

// ReadNext pops and returns the oldest unread reading for key, or ok=false
// when the segment is empty (data_store.rs's read_next_message returning an
// empty BytesMut).
func (s *Store) ReadNext(key ResourceMethodKey) (reading Reading, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seg, exists := s.segments[key]
	if !exists {
		return Reading{}, false, fmt.Errorf("datacapture: unknown collector key %s", key)
	}
	if len(seg.entries) == 0 {
		return Reading{}, false, nil
	}
	head := seg.entries[0]
	seg.entries = seg.entries[1:]
	seg.used -= head.bytes
	return head.reading, true, nil
}

// DrainAll pops every pending reading for key, oldest first, for a single
// upload batch.
func (s *Store) DrainAll(key ResourceMethodKey) ([]Reading, error) {
	var out []Reading
	for {
		r, ok, err := s.ReadNext(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, r)
	}
}
