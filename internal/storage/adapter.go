// Package storage persists the application document to a key-value Medium
// and announces every write so other readers of the same medium can reload.
package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/baiirun/simplrtask/internal/model"
)

const (
	AppDataKey        = "app-data"
	PopoutPositionKey = "popout-position"
)

// ErrNotVersioned is returned by Watch when the medium cannot report writes
// made by other processes.
var ErrNotVersioned = errors.New("storage medium does not track versions")

// subscriberBuffer is how many unread notifications a subscriber may have
// before further ones are dropped. Readers reload the whole document, so a
// dropped duplicate loses nothing.
const subscriberBuffer = 8

// Adapter reads and writes the application document and the popout
// position. Read and write failures are logged, never returned.
type Adapter struct {
	medium Medium
	log    *zap.Logger

	mu     sync.Mutex
	subs   map[int]chan string
	nextID int
	seen   map[string]int64 // last version written or observed per key
}

// NewAdapter returns an adapter over m. A nil logger discards logs.
func NewAdapter(m Medium, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		medium: m,
		log:    logger.Named("storage"),
		subs:   map[int]chan string{},
		seen:   map[string]int64{},
	}
}

// Load returns the stored document, repaired. When nothing usable is stored
// (missing, corrupt, unreadable, or without projects) it stores and returns
// a fresh starter document instead.
func (a *Adapter) Load() *model.AppData {
	raw, ok, err := a.medium.Get(AppDataKey)
	if err != nil {
		a.log.Error("failed to read app data", zap.Error(err))
		return a.reset()
	}
	if !ok || raw == "" {
		a.log.Debug("no app data stored, creating starter project")
		return a.reset()
	}

	data, err := decodeDocument([]byte(raw))
	if err != nil {
		a.log.Error("failed to parse app data, starting over", zap.Error(err))
		return a.reset()
	}
	if len(data.Projects) == 0 {
		a.log.Info("stored app data has no projects, creating starter project")
		return a.reset()
	}
	return data
}

func (a *Adapter) reset() *model.AppData {
	data := model.NewAppData()
	a.Save(data)
	return data
}

// Save writes the whole document and, if the write succeeded, announces
// AppDataKey to subscribers.
func (a *Adapter) Save(data *model.AppData) {
	b, err := encodeDocument(data)
	if err != nil {
		a.log.Error("failed to encode app data", zap.Error(err))
		return
	}
	if !a.write(AppDataKey, string(b)) {
		return
	}
	a.publish(AppDataKey)
}

// PopoutPosition returns the stored popout placement, or the default when
// it is missing, invalid or unreadable.
func (a *Adapter) PopoutPosition() model.PopoutPosition {
	raw, ok, err := a.medium.Get(PopoutPositionKey)
	if err != nil {
		a.log.Error("failed to read popout position", zap.Error(err))
		return model.DefaultPopoutPosition
	}
	pos := model.PopoutPosition(raw)
	if !ok || !pos.IsValid() {
		return model.DefaultPopoutPosition
	}
	return pos
}

// SavePopoutPosition stores pos and announces PopoutPositionKey. Invalid
// positions are logged and ignored.
func (a *Adapter) SavePopoutPosition(pos model.PopoutPosition) {
	if !pos.IsValid() {
		a.log.Warn("ignoring invalid popout position", zap.String("position", string(pos)))
		return
	}
	if !a.write(PopoutPositionKey, string(pos)) {
		return
	}
	a.publish(PopoutPositionKey)
}

func (a *Adapter) write(key, value string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Remember our own write so Watch does not announce it a second time.
	if vs, ok := a.medium.(VersionedSetter); ok {
		version, err := vs.SetVersion(key, value)
		if err != nil {
			a.log.Error("failed to save", zap.String("key", key), zap.Error(err))
			return false
		}
		a.seen[key] = version
		return true
	}

	if err := a.medium.Set(key, value); err != nil {
		a.log.Error("failed to save", zap.String("key", key), zap.Error(err))
		return false
	}
	// Without an atomic version a concurrent write may be taken for ours.
	if v, ok := a.medium.(Versioned); ok {
		if version, err := v.Version(key); err == nil {
			a.seen[key] = version
		}
	}
	return true
}

// Subscribe returns a channel receiving the key of every write to the
// medium that this adapter performs or, while Watch runs, observes. Call
// cancel to stop receiving; the channel is then closed.
func (a *Adapter) Subscribe() (<-chan string, func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextID
	a.nextID++
	ch := make(chan string, subscriberBuffer)
	a.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			a.mu.Lock()
			defer a.mu.Unlock()
			delete(a.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (a *Adapter) publish(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, ch := range a.subs {
		select {
		case ch <- key:
		default:
		}
	}
}

// Watch polls the medium every interval for writes made through other
// adapters or processes and announces them to subscribers. It blocks until
// ctx is done. Writes that happened before Watch started are not announced.
func (a *Adapter) Watch(ctx context.Context, interval time.Duration) error {
	v, ok := a.medium.(Versioned)
	if !ok {
		return ErrNotVersioned
	}
	if interval <= 0 {
		return errors.New("watch interval must be positive")
	}

	keys := []string{AppDataKey, PopoutPositionKey}
	a.mu.Lock()
	for _, key := range keys {
		if _, known := a.seen[key]; known {
			continue
		}
		if version, err := v.Version(key); err == nil {
			a.seen[key] = version
		}
	}
	a.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, key := range keys {
				if a.observe(v, key) {
					a.publish(key)
				}
			}
		}
	}
}

// observe reports whether key changed since it was last written or seen.
func (a *Adapter) observe(v Versioned, key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	version, err := v.Version(key)
	if err != nil {
		a.log.Warn("failed to poll storage version", zap.String("key", key), zap.Error(err))
		return false
	}
	if version == a.seen[key] {
		return false
	}
	a.seen[key] = version
	return true
}
