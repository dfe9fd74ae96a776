package storage

import "sync"

// Medium is a persistent string key-value store. *db.DB implements it.
type Medium interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Versioned is implemented by media that count writes per key. Adapters use
// it to notice writes made by other processes sharing the medium.
type Versioned interface {
	Version(key string) (int64, error)
}

// VersionedSetter is implemented by media that report the version a write
// produced, atomically with the write.
type VersionedSetter interface {
	SetVersion(key, value string) (int64, error)
}

// MemoryMedium is an in-process Medium. Several adapters may share one to
// behave like windows of the same application.
type MemoryMedium struct {
	mu       sync.Mutex
	values   map[string]string
	versions map[string]int64
	readErr  error
	writeErr error
}

func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{
		values:   map[string]string{},
		versions: map[string]int64{},
	}
}

func (m *MemoryMedium) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.readErr != nil {
		return "", false, m.readErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryMedium) Set(key, value string) error {
	_, err := m.SetVersion(key, value)
	return err
}

func (m *MemoryMedium) SetVersion(key, value string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return 0, m.writeErr
	}
	m.values[key] = value
	m.versions[key]++
	return m.versions[key], nil
}

func (m *MemoryMedium) Version(key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.readErr != nil {
		return 0, m.readErr
	}
	return m.versions[key], nil
}

// FailReads makes every read return err until called again with nil.
func (m *MemoryMedium) FailReads(err error) {
	m.mu.Lock()
	m.readErr = err
	m.mu.Unlock()
}

// FailWrites makes every write return err until called again with nil.
func (m *MemoryMedium) FailWrites(err error) {
	m.mu.Lock()
	m.writeErr = err
	m.mu.Unlock()
}
