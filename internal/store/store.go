package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/twitchpanel/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketPreferences = []byte("preferences")
)

// Record keys
const (
	keyCollapsed       = "collapsed"
	keySelectedStreams = "selected_streams"
	keyChatTarget      = "chat_target"
)

// PreferenceStore implements domain.PreferenceStore using BoltDB.
type PreferenceStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory copy of every record read or written
	cache map[string][]byte
}

var _ domain.PreferenceStore = (*PreferenceStore)(nil)

// NewPreferenceStore opens (or creates) the preference database under baseDir.
// Preferences are kept per application profile (the Twitch client id) so two
// registrations never share selections. An empty baseDir keeps everything in memory.
func NewPreferenceStore(baseDir, profile string) (*PreferenceStore, error) {
	if baseDir == "" {
		return &PreferenceStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseDir
	if profile != "" {
		dir = filepath.Join(baseDir, hashProfile(profile))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "twitchpanel.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPreferences)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &PreferenceStore{db: db, cache: make(map[string][]byte)}, nil
}

func hashProfile(profile string) string {
	normalized := strings.ToLower(strings.TrimSpace(profile))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *PreferenceStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *PreferenceStore) get(key string, dest interface{}) bool {
	s.mu.RLock()
	if data, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPreferences)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	s.mu.Lock()
	s.cache[key] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *PreferenceStore) set(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[key] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketPreferences)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), data)
	})
}

// === Collapsed sidebar ===

func (s *PreferenceStore) GetCollapsed() (bool, bool) {
	var collapsed bool
	ok := s.get(keyCollapsed, &collapsed)
	return collapsed, ok
}

func (s *PreferenceStore) SaveCollapsed(collapsed bool) error {
	return s.set(keyCollapsed, collapsed)
}

// === Selected streams ===

func (s *PreferenceStore) GetSelectedStreams() ([]domain.StreamInfo, bool) {
	var streams []domain.StreamInfo
	if !s.get(keySelectedStreams, &streams) {
		return nil, false
	}
	if streams == nil {
		streams = []domain.StreamInfo{}
	}
	return streams, true
}

func (s *PreferenceStore) SaveSelectedStreams(streams []domain.StreamInfo) error {
	if streams == nil {
		streams = []domain.StreamInfo{}
	}
	return s.set(keySelectedStreams, streams)
}

// === Chat target ===

// GetChatTarget distinguishes a stored JSON null ("no chat") from a missing record
func (s *PreferenceStore) GetChatTarget() (*domain.StreamInfo, bool) {
	var target *domain.StreamInfo
	ok := s.get(keyChatTarget, &target)
	if !ok {
		return nil, false
	}
	return target, true
}

func (s *PreferenceStore) SaveChatTarget(target *domain.StreamInfo) error {
	return s.set(keyChatTarget, target)
}

// === Invalidation ===

// Clear wipes every preference record
func (s *PreferenceStore) Clear() error {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketPreferences) != nil {
			if err := tx.DeleteBucket(bucketPreferences); err != nil {
				return err
			}
		}
		_, err := tx.CreateBucket(bucketPreferences)
		return err
	})
}
