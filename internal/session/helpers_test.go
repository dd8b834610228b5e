package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guilhermegouw/atelier/internal/conversation"
	"github.com/guilhermegouw/atelier/internal/gateway"
	"github.com/guilhermegouw/atelier/internal/store"
)

// fakeGateway answers deterministically and records what it was asked.
type fakeGateway struct {
	mu        sync.Mutex
	histories [][]conversation.Message
	sources   []conversation.Image
	prompts   []string

	// hold, when set, is called at the start of every backend call.
	hold func()

	chatErr     error
	generateErr error
	analyzeErr  error
	editErr     error
	analyses    atomic.Int32
}

func (f *fakeGateway) wait() {
	if f.hold != nil {
		f.hold()
	}
}

func (f *fakeGateway) ChatComplete(_ context.Context, _ string, history []conversation.Message) (string, error) {
	f.wait()
	f.mu.Lock()
	f.histories = append(f.histories, history)
	f.mu.Unlock()
	if f.chatErr != nil {
		return "", f.chatErr
	}
	return "echo: " + history[len(history)-1].Content, nil
}

func (f *fakeGateway) GenerateImages(_ context.Context, prompt string, params conversation.GenerationParams) ([]conversation.Image, error) {
	f.wait()
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	images := make([]conversation.Image, params.NumberOfImages)
	for i := range images {
		images[i] = conversation.Image{MIMEType: params.OutputMIMEType, Data: []byte(fmt.Sprintf("%s#%d", prompt, i))}
	}
	return images, nil
}

func (f *fakeGateway) AnalyzeImage(_ context.Context, img conversation.Image, _ string) (string, error) {
	f.wait()
	if f.analyzeErr != nil {
		return "", f.analyzeErr
	}
	n := f.analyses.Add(1)
	return fmt.Sprintf("analysis %d of %s", n, img.Data), nil
}

func (f *fakeGateway) EditImage(_ context.Context, img conversation.Image, instruction string) (*conversation.Image, error) {
	f.wait()
	f.mu.Lock()
	f.sources = append(f.sources, img)
	f.mu.Unlock()
	if f.editErr != nil {
		return nil, f.editErr
	}
	out := conversation.Image{MIMEType: conversation.MIMETypePNG, Data: append(append([]byte{}, img.Data...), "+"+instruction...)}
	return &out, nil
}

// barrier releases every caller once n of them have arrived.
func barrier(n int) func() {
	var (
		mu      sync.Mutex
		arrived int
		release = make(chan struct{})
	)
	return func() {
		mu.Lock()
		arrived++
		if arrived == n {
			close(release)
		}
		mu.Unlock()
		<-release
	}
}

func memoryStore(t *testing.T) *store.Shared {
	t.Helper()
	st := store.NewShared(store.NewMemoryStore())
	t.Cleanup(func() { _ = st.Close() }) //nolint:errcheck // Intentionally ignoring close error in test cleanup
	return st
}

func sqliteStore(t *testing.T) *store.Shared {
	t.Helper()
	st, err := store.Open(store.DriverSQLite, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() }) //nolint:errcheck // Intentionally ignoring close error in test cleanup
	return st
}

// sequence returns an id generator yielding id-1, id-2, ...
func sequence() func() string {
	var n atomic.Int32
	return func() string {
		return fmt.Sprintf("id-%d", n.Add(1))
	}
}

// brokenStore fails every Put.
type brokenStore struct {
	store.LockingStore
}

var errDiskFull = errors.New("disk full")

func (brokenStore) Put(context.Context, *conversation.Record) error {
	return errDiskFull
}

// corruptStore reports the record under id as unreadable.
type corruptStore struct {
	store.LockingStore
	id string
}

func (c corruptStore) Get(ctx context.Context, id string) (*conversation.Record, bool, error) {
	if id == c.id {
		return nil, false, fmt.Errorf("getting conversation %q: %w", id, conversation.ErrMalformed)
	}
	return c.LockingStore.Get(ctx, id)
}

func safe(gw *fakeGateway) *gateway.Safe {
	return gateway.NewSafe(gw)
}

func record(t *testing.T, st store.Store, id string) *conversation.Record {
	t.Helper()
	rec, ok, err := st.Get(context.Background(), id)
	require.NoError(t, err)
	require.True(t, ok, "record %s should exist", id)
	return rec
}

var catPNG = conversation.Image{URL: "file:///tmp/cat.png", MIMEType: conversation.MIMETypePNG, Data: []byte("cat")}
