package actions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/lib/localstore"
	"github.com/casos-paranormales/casos-cli/lib/session"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// fakePlatform 只实现编排用到的方法，其余调用会 panic
type fakePlatform struct {
	lib.Platform

	mu sync.Mutex

	location     *lib.Location
	lookupErr    error
	lookupBlocks bool
	createCase   error
	createFiles  error

	lookups         int
	locationsMade   []lib.LocationInput
	casesMade       []lib.CaseInput
	filesRecorded   [][]lib.FileInput
	createFileCalls int
}

func (f *fakePlatform) FindLocation(ctx context.Context, country, address string) (*lib.Location, error) {
	f.mu.Lock()
	f.lookups++
	blocks := f.lookupBlocks
	f.mu.Unlock()
	if blocks {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	if f.location == nil {
		return nil, lib.ErrNotFound
	}
	return f.location, nil
}

func (f *fakePlatform) CreateLocation(ctx context.Context, in lib.LocationInput) (*lib.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locationsMade = append(f.locationsMade, in)
	return &lib.Location{Id: 70 + int64(len(f.locationsMade)), Country: in.Country, Region: in.Region, Address: in.Address}, nil
}

func (f *fakePlatform) CreateCase(ctx context.Context, in lib.CaseInput) (*lib.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.casesMade = append(f.casesMade, in)
	if f.createCase != nil {
		return nil, f.createCase
	}
	return &lib.Case{Id: 42, UserId: in.UserId, CaseTypeId: in.CaseTypeId, CaseName: in.CaseName, LocationId: in.LocationId}, nil
}

func (f *fakePlatform) CreateFiles(ctx context.Context, files []lib.FileInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createFileCalls++
	if f.createFiles != nil {
		return f.createFiles
	}
	f.filesRecorded = append(f.filesRecorded, files)
	return nil
}

// memBlobs 内存对象存储
type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	failOn  string
	uploads int

	signs    int
	signErr  error
	signFunc func(path string, n int) string
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: make(map[string][]byte)}
}

func (m *memBlobs) Upload(ctx context.Context, bucket, path, contentType string, body io.Reader, size int64) (string, error) {
	m.mu.Lock()
	m.uploads++
	m.mu.Unlock()
	if m.failOn != "" && strings.Contains(path, m.failOn) {
		return "", errBoom
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := bucket + "/" + path
	if _, ok := m.objects[key]; ok {
		return "", fmt.Errorf("object already exists: %s", path)
	}
	m.objects[key] = data
	return "mem://" + key, nil
}

func (m *memBlobs) SignURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signs++
	if m.signErr != nil {
		return "", m.signErr
	}
	if m.signFunc != nil {
		return m.signFunc(path, m.signs), nil
	}
	return fmt.Sprintf("mem://%s/%s?sig=%d", bucket, path, m.signs), nil
}

func (m *memBlobs) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func openLocal(t *testing.T) *localstore.Store {
	t.Helper()
	s, err := localstore.Open(filepath.Join(t.TempDir(), "casos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newSession(t *testing.T) *session.Store {
	t.Helper()
	return session.NewStore(filepath.Join(t.TempDir(), "session.json"))
}
