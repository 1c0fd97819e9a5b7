package secrets

import (
	"os"
	"path/filepath"
	"testing"

	kerrors "github.com/PolarWolf314/gitenc/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingConfirmer struct {
	answer   bool
	messages []string
	defaults []bool
}

func (r *recordingConfirmer) Confirm(message string, defaultYes bool) (bool, error) {
	r.messages = append(r.messages, message)
	r.defaults = append(r.defaults, defaultYes)
	return r.answer, nil
}

func TestKeyStoreLoadMissing(t *testing.T) {
	store := NewKeyStore(filepath.Join(t.TempDir(), "secrets"))

	assert.False(t, store.Exists())
	_, err := store.Load()
	assert.ErrorIs(t, err, kerrors.ErrKeyNotFound)
}

func TestKeyStoreLoadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, KeyFileName), []byte("  \n"), 0600))

	_, err := NewKeyStore(dir).Load()
	assert.ErrorIs(t, err, kerrors.ErrKeyNotFound)
}

func TestKeyStoreStoreAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "secrets")
	store := NewKeyStore(dir)
	key := mustKey(t)

	require.NoError(t, store.Store(key))
	assert.True(t, store.Exists())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, key, loaded)

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSafeStoreWithoutExistingKey(t *testing.T) {
	store := NewKeyStore(t.TempDir())
	confirmer := &recordingConfirmer{}

	result, err := store.SafeStore(mustKey(t), confirmer)
	require.NoError(t, err)
	assert.True(t, result.Stored)
	assert.False(t, result.Replaced)
	assert.Empty(t, confirmer.messages, "no prompt when nothing is stored")
}

func TestSafeStoreIdenticalKeyIsNoop(t *testing.T) {
	store := NewKeyStore(t.TempDir())
	key := mustKey(t)
	require.NoError(t, store.Store(key))
	confirmer := &recordingConfirmer{}

	result, err := store.SafeStore(key, confirmer)
	require.NoError(t, err)
	assert.False(t, result.Stored)
	assert.False(t, result.Declined)
	assert.Empty(t, confirmer.messages)
}

func TestSafeStoreDecline(t *testing.T) {
	store := NewKeyStore(t.TempDir())
	existing := mustKey(t)
	require.NoError(t, store.Store(existing))
	confirmer := &recordingConfirmer{answer: false}

	result, err := store.SafeStore(mustKey(t), confirmer)
	require.NoError(t, err)
	assert.True(t, result.Declined)
	assert.False(t, result.Stored)
	assert.Equal(t, existing, result.Existing)
	assert.Equal(t, []string{"Found existing key, replace?"}, confirmer.messages)
	assert.Equal(t, []bool{false}, confirmer.defaults)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, existing, loaded)
}

func TestSafeStoreReplace(t *testing.T) {
	store := NewKeyStore(t.TempDir())
	require.NoError(t, store.Store(mustKey(t)))
	replacement := mustKey(t)

	result, err := store.SafeStore(replacement, ConfirmFunc(func(string, bool) (bool, error) {
		return true, nil
	}))
	require.NoError(t, err)
	assert.True(t, result.Stored)
	assert.True(t, result.Replaced)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, replacement, loaded)
}

func TestSafeStoreNilConfirmerDeclines(t *testing.T) {
	store := NewKeyStore(t.TempDir())
	existing := mustKey(t)
	require.NoError(t, store.Store(existing))

	result, err := store.SafeStore(mustKey(t), nil)
	require.NoError(t, err)
	assert.True(t, result.Declined)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, existing, loaded)
}
