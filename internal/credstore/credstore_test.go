package credstore

import (
	"errors"
	"os"
	"testing"

	"github.com/hytalecompat/gameserver/internal/wire"
)

type fakeFS struct {
	files map[string][]byte
}

func newFakeFS() *fakeFS { return &fakeFS{files: map[string][]byte{}} }

func (f *fakeFS) ReadFile(path string) ([]byte, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (f *fakeFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	f.files[path] = append([]byte(nil), data...)
	return nil
}

func (f *fakeFS) Remove(path string) error {
	delete(f.files, path)
	return nil
}

type sequentialRandom struct{ b byte }

func (r *sequentialRandom) Fill(b []byte) error {
	for i := range b {
		b[i] = r.b
		r.b++
	}
	return nil
}

func ptr(s string) *string { return &s }

func TestMemoryStoreRoundTrip(t *testing.T) {
	m := NewMemoryStore()
	if got, err := m.Load(); err != nil || got != nil {
		t.Fatalf("expected empty store, got %+v, %v", got, err)
	}

	rec := Record{AccessToken: ptr("at1"), RefreshToken: ptr("rt1"), ExpiresAt: 1000}
	if err := m.Save(rec); err != nil {
		t.Fatal(err)
	}

	loaded, err := m.Load()
	if err != nil {
		t.Fatal(err)
	}
	if *loaded.AccessToken != "at1" || *loaded.RefreshToken != "rt1" {
		t.Fatalf("got %+v", loaded)
	}

	// Mutating the caller's original string must not reach the store.
	*rec.AccessToken = "mutated"
	loaded2, _ := m.Load()
	if *loaded2.AccessToken != "at1" {
		t.Fatalf("deep copy violated: %+v", loaded2)
	}
}

func TestMemoryStoreClear(t *testing.T) {
	m := NewMemoryStore()
	m.Save(Record{AccessToken: ptr("at1"), ExpiresAt: 1000})
	m.Clear()
	if got, _ := m.Load(); got != nil {
		t.Fatalf("expected nil after clear, got %+v", got)
	}
}

func TestCanRefreshInvariant(t *testing.T) {
	withRefresh := Record{RefreshToken: ptr("rt1")}
	withoutRefresh := Record{}
	if !withRefresh.CanRefresh() || withoutRefresh.CanRefresh() {
		t.Fatal("CanRefresh invariant violated")
	}
}

func TestAccessTokenValidInvariant(t *testing.T) {
	rec := Record{AccessToken: ptr("at1"), ExpiresAt: 1000}
	if !rec.AccessTokenValid(600) {
		t.Fatal("expected valid well before expiry margin")
	}
	if rec.AccessTokenValid(701) {
		t.Fatal("expected invalid within the 300s refresh margin")
	}
	if Record{ExpiresAt: 1000}.AccessTokenValid(0) {
		t.Fatal("expected invalid with no access token")
	}
}

func TestEncryptedStoreRoundTrip(t *testing.T) {
	fs := newFakeFS()
	machineUUID := wire.FormatUUID(wire.UUID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16})
	s := NewEncryptedStore(fs, &sequentialRandom{b: 1}, "auth.enc", machineUUID)

	if !s.IsEncryptionAvailable() {
		t.Fatal("expected encryption available")
	}

	profileUUID := wire.UUID{0xaa}
	rec := Record{
		AccessToken:  ptr("at1"),
		RefreshToken: ptr("rt1"),
		ExpiresAt:    123456,
		ProfileUUID:  &profileUUID,
		Username:     ptr("Steve"),
	}
	if err := s.Save(rec); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded == nil || *loaded.AccessToken != "at1" || *loaded.Username != "Steve" {
		t.Fatalf("got %+v", loaded)
	}
	if loaded.ProfileUUID == nil || *loaded.ProfileUUID != profileUUID {
		t.Fatalf("profile uuid mismatch: %+v", loaded.ProfileUUID)
	}
}

func TestEncryptedStoreDifferentMachineYieldsCorruptCiphertext(t *testing.T) {
	fs := newFakeFS()
	uuidA := wire.FormatUUID(wire.UUID{1})
	uuidB := wire.FormatUUID(wire.UUID{2})

	writer := NewEncryptedStore(fs, &sequentialRandom{b: 1}, "auth.enc", uuidA)
	writer.Save(Record{AccessToken: ptr("at1"), ExpiresAt: 100})

	reader := NewEncryptedStore(fs, &sequentialRandom{b: 1}, "auth.enc", uuidB)
	loaded, err := reader.Load()
	if !errors.Is(err, ErrCorruptCiphertext) {
		t.Fatalf("expected ErrCorruptCiphertext when decrypted with the wrong machine key, got %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected nil record alongside the error, got %+v", loaded)
	}
}

func TestEncryptedStoreSaveWithoutKeyFails(t *testing.T) {
	fs := newFakeFS()
	s := NewEncryptedStore(fs, &sequentialRandom{b: 1}, "auth.enc", "")
	if s.IsEncryptionAvailable() {
		t.Fatal("expected encryption unavailable with no machine id")
	}
	if err := s.Save(Record{ExpiresAt: 1}); err != ErrNoEncryptionKey {
		t.Fatalf("got %v, want ErrNoEncryptionKey", err)
	}
}

func TestEncryptedStoreClear(t *testing.T) {
	fs := newFakeFS()
	uuid := wire.FormatUUID(wire.UUID{1})
	s := NewEncryptedStore(fs, &sequentialRandom{b: 1}, "auth.enc", uuid)
	s.Save(Record{AccessToken: ptr("at1"), ExpiresAt: 1})
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	loaded, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded != nil {
		t.Fatalf("expected nil after clear, got %+v", loaded)
	}
}
