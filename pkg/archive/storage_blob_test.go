package archive

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gocloud.dev/blob/memblob"
)

func testBlobStorage(t *testing.T, prefix string) *BlobStorage {
	t.Helper()
	bucket := memblob.OpenBucket(nil)
	s := NewBlobStorageFromBucket(bucket, prefix)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func TestBlobStorageRoundTrip(t *testing.T) {
	s := testBlobStorage(t, "")

	require.NoError(t, s.Write(t.Context(), "bundle-a.json", []byte(`{"a":1}`)))

	data, err := s.Read(t.Context(), "bundle-a.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
}

func TestBlobStorageReadMissing(t *testing.T) {
	s := testBlobStorage(t, "")

	_, err := s.Read(t.Context(), "nope.json")
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestBlobStoragePrefix(t *testing.T) {
	bucket := memblob.OpenBucket(nil)
	s := NewBlobStorageFromBucket(bucket, "backups")
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	require.NoError(t, s.Write(t.Context(), "bundle-a.json", []byte("{}")))

	// The key is namespaced inside the bucket but listed without the prefix
	data, err := bucket.ReadAll(t.Context(), "backups/bundle-a.json")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	keys, err := s.List(t.Context(), "bundle-")
	require.NoError(t, err)
	assert.Equal(t, []string{"bundle-a.json"}, keys)
}

func TestBlobStorageList(t *testing.T) {
	s := testBlobStorage(t, "")

	require.NoError(t, s.Write(t.Context(), "bundle-a.json", []byte("{}")))
	require.NoError(t, s.Write(t.Context(), "bundle-b.json", []byte("{}")))
	require.NoError(t, s.Write(t.Context(), "other.json", []byte("{}")))

	keys, err := s.List(t.Context(), "bundle-")
	require.NoError(t, err)
	assert.Equal(t, []string{"bundle-b.json", "bundle-a.json"}, keys)
}

func TestBlobStorageDelete(t *testing.T) {
	s := testBlobStorage(t, "")

	require.NoError(t, s.Write(t.Context(), "bundle-a.json", []byte("{}")))
	require.NoError(t, s.Delete(t.Context(), "bundle-a.json"))

	_, err := s.Read(t.Context(), "bundle-a.json")
	require.Error(t, err)

	// Deleting a missing key is not an error
	require.NoError(t, s.Delete(t.Context(), "bundle-a.json"))
}

func TestArchiveWithBlobStorage(t *testing.T) {
	// close is owned by the archive here
	s := NewBlobStorageFromBucket(memblob.OpenBucket(nil), "")
	a, err := New(zaptest.NewLogger(t), WithStorage(s), WithLimit(1))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, a.Close())
	})

	require.NoError(t, a.Add(t.Context(), testSnippets(2)))
	require.NoError(t, a.Add(t.Context(), testSnippets(4)))

	current, err := a.GetCurrent(t.Context())
	require.NoError(t, err)
	assert.Len(t, current, 4)

	bundles, err := a.getBundles(t.Context())
	require.NoError(t, err)
	assert.Len(t, bundles, 1)
}
