package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cogere/artifact-host/internal/core/domain"
	"github.com/cogere/artifact-host/internal/core/ports"
)

// Interface compliance (compile-time assertions)
var (
	_ ports.BlobStore = (*FilesystemStore)(nil)
	_ ports.BlobStore = (*MemoryStore)(nil)
	_ ports.BlobStore = (*CompressedStore)(nil)
	_ ports.BlobStore = (*Instrumented)(nil)
)

const testMaxObject = 1 << 20

func backends(t *testing.T) map[string]ports.BlobStore {
	t.Helper()
	fsStore, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)
	fsForLZ4, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	return map[string]ports.BlobStore{
		"filesystem":     fsStore,
		"memory":         NewMemoryStore(),
		"zstd+memory":    NewCompressedStore(NewMemoryStore(), CodecZstd, testMaxObject),
		"lz4+filesystem": NewCompressedStore(fsForLZ4, CodecLZ4, testMaxObject),
		"none+memory":    NewCompressedStore(NewMemoryStore(), CodecNone, testMaxObject),
		"instrumented":   NewInstrumented(NewMemoryStore()),
	}
}

func newKey(t *testing.T) domain.BlobKey {
	t.Helper()
	k, err := domain.NewBlobKey()
	require.NoError(t, err)
	return k
}

func TestBlobStore_RoundTrip(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			k := newKey(t)
			payload := bytes.Repeat([]byte("plugin-bytes "), 512)

			exists, err := store.Exists(ctx, k)
			require.NoError(t, err)
			assert.False(t, exists, "exists before put")

			require.NoError(t, store.Put(ctx, k, payload))

			exists, err = store.Exists(ctx, k)
			require.NoError(t, err)
			assert.True(t, exists, "exists after put")

			got, err := store.Get(ctx, k)
			require.NoError(t, err)
			assert.Equal(t, payload, got)

			require.NoError(t, store.Delete(ctx, k))

			exists, err = store.Exists(ctx, k)
			require.NoError(t, err)
			assert.False(t, exists, "exists after delete")

			_, err = store.Get(ctx, k)
			assert.ErrorIs(t, err, domain.ErrBlobNotFound)
			var nf *domain.BlobNotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, k, nf.Key)
		})
	}
}

func TestBlobStore_OverwriteReplacesWholeObject(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			k := newKey(t)

			require.NoError(t, store.Put(ctx, k, []byte("abc")))
			require.NoError(t, store.Put(ctx, k, []byte("xyz")))

			got, err := store.Get(ctx, k)
			require.NoError(t, err)
			assert.Equal(t, []byte("xyz"), got)
		})
	}
}

func TestBlobStore_DeleteMissingIsNotFound(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := store.Delete(context.Background(), newKey(t))
			assert.ErrorIs(t, err, domain.ErrBlobNotFound)
			assert.NotErrorIs(t, err, domain.ErrBlobIO)
		})
	}
}

func TestBlobStore_EmptyObject(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			k := newKey(t)
			require.NoError(t, store.Put(ctx, k, []byte{}))
			got, err := store.Get(ctx, k)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestBlobStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, name := range []string{"filesystem", "memory"} {
		store := backends(t)[name]
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, store.Put(ctx, newKey(t), []byte("x")), context.Canceled)
		})
	}
}

func TestBlobStore_ConcurrentDistinctKeys(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			keys := make([]domain.BlobKey, 20)
			for i := range keys {
				keys[i] = newKey(t)
			}

			var wg sync.WaitGroup
			for i, k := range keys {
				wg.Add(1)
				go func(i int, k domain.BlobKey) {
					defer wg.Done()
					if err := store.Put(ctx, k, []byte(fmt.Sprintf("object-%d", i))); err != nil {
						t.Errorf("put %d: %v", i, err)
					}
				}(i, k)
			}
			wg.Wait()

			for i, k := range keys {
				got, err := store.Get(ctx, k)
				require.NoError(t, err)
				assert.Equal(t, fmt.Sprintf("object-%d", i), string(got))
			}
		})
	}
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	k := newKey(t)
	data := []byte("hello")

	require.NoError(t, store.Put(ctx, k, data))
	data[0] = 'H'

	out, err := store.Get(ctx, k)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))

	out[0] = 'x'
	out2, err := store.Get(ctx, k)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out2))
}

func TestFilesystemStore_FileNamedByKey(t *testing.T) {
	root := t.TempDir()
	store, err := NewFilesystemStore(root)
	require.NoError(t, err)

	k := newKey(t)
	require.NoError(t, store.Put(context.Background(), k, []byte("abc")))

	onDisk, err := os.ReadFile(filepath.Join(root, k.String()))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), onDisk)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not survive a successful put")
}

func TestFilesystemStore_RemovesStaleTempFiles(t *testing.T) {
	root := t.TempDir()
	stale := filepath.Join(root, tmpPrefix+"leftover")
	require.NoError(t, os.WriteFile(stale, []byte("partial"), 0o644))

	_, err := NewFilesystemStore(root)
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.True(t, errors.Is(err, os.ErrNotExist), "stale temp file should be removed")
}

func TestFilesystemStore_IOFailureIsNotNotFound(t *testing.T) {
	root := t.TempDir()
	store, err := NewFilesystemStore(root)
	require.NoError(t, err)

	// A directory where the object file should be makes reads fail with
	// something other than "not exist".
	k := newKey(t)
	require.NoError(t, os.Mkdir(filepath.Join(root, k.String()), 0o755))

	_, err = store.Get(context.Background(), k)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBlobIO)
	assert.NotErrorIs(t, err, domain.ErrBlobNotFound)
}

func TestCompressedStore_ShrinksCompressibleData(t *testing.T) {
	for _, codec := range []Codec{CodecLZ4, CodecZstd} {
		t.Run(codec.String(), func(t *testing.T) {
			ctx := context.Background()
			inner := NewMemoryStore()
			store := NewCompressedStore(inner, codec, testMaxObject)
			k := newKey(t)
			payload := []byte(strings.Repeat("aaaaaaaaaaaaaaaa", 1024))

			require.NoError(t, store.Put(ctx, k, payload))

			raw, err := inner.Get(ctx, k)
			require.NoError(t, err)
			assert.Less(t, len(raw), len(payload))
			require.True(t, bytes.HasPrefix(raw, frameMagic))
			assert.Equal(t, byte(codec), raw[len(frameMagic)])

			got, err := store.Get(ctx, k)
			require.NoError(t, err)
			assert.Equal(t, payload, got)
		})
	}
}

func TestCompressedStore_IncompressibleStoredRaw(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	store := NewCompressedStore(inner, CodecZstd, testMaxObject)
	k := newKey(t)

	require.NoError(t, store.Put(ctx, k, []byte("xy")))
	raw, err := inner.Get(ctx, k)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(raw, frameMagic))
	assert.Equal(t, byte(CodecNone), raw[len(frameMagic)])
}

func framed(codec Codec, rest ...byte) []byte {
	out := append([]byte{}, frameMagic...)
	out = append(out, byte(codec))
	return append(out, rest...)
}

func TestCompressedStore_CorruptObjectIsIOFailure(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	store := NewCompressedStore(inner, CodecZstd, testMaxObject)
	k := newKey(t)

	require.NoError(t, inner.Put(ctx, k, framed(CodecZstd, 0x05, 0xde, 0xad)))
	_, err := store.Get(ctx, k)
	assert.ErrorIs(t, err, domain.ErrBlobIO)
}

func TestCompressedStore_OversizedLengthHeaderIsIOFailure(t *testing.T) {
	// A uvarint just under 2^63: far beyond any object the store accepts.
	huge := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f, 'x'}

	cases := map[string]struct {
		codec     Codec
		maxObject int64
	}{
		"zstd bounded":   {CodecZstd, testMaxObject},
		"lz4 bounded":    {CodecLZ4, testMaxObject},
		"zstd unbounded": {CodecZstd, 0},
		"lz4 unbounded":  {CodecLZ4, 0},
		"none bounded":   {CodecNone, testMaxObject},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			inner := NewMemoryStore()
			store := NewCompressedStore(inner, tc.codec, tc.maxObject)
			k := newKey(t)

			require.NoError(t, inner.Put(ctx, k, framed(tc.codec, huge...)))
			var err error
			require.NotPanics(t, func() { _, err = store.Get(ctx, k) })
			assert.ErrorIs(t, err, domain.ErrBlobIO)
			assert.NotErrorIs(t, err, domain.ErrBlobNotFound)
		})
	}
}

func TestCompressedStore_RejectsObjectsOverLimit(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	store := NewCompressedStore(inner, CodecZstd, 8)
	k := newKey(t)

	err := store.Put(ctx, k, []byte("nine bytes"))
	assert.ErrorIs(t, err, domain.ErrBlobIO)
	exists, err := inner.Exists(ctx, k)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCompressedStore_ReadsObjectsStoredBeforeCompression(t *testing.T) {
	jar := append([]byte("PK\x03\x04"), bytes.Repeat([]byte(" plugin bytes"), 64)...)

	for _, codec := range []Codec{CodecNone, CodecLZ4, CodecZstd} {
		t.Run(codec.String(), func(t *testing.T) {
			ctx := context.Background()
			inner := NewMemoryStore()
			k := newKey(t)
			require.NoError(t, inner.Put(ctx, k, jar))

			got, err := NewCompressedStore(inner, codec, testMaxObject).Get(ctx, k)
			require.NoError(t, err)
			assert.Equal(t, jar, got)
		})
	}
}

func TestCompressedStore_SwitchingCodecKeepsObjectsReadable(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	payload := []byte(strings.Repeat("manifest entry\n", 256))

	keys := map[Codec]domain.BlobKey{}
	for _, codec := range []Codec{CodecNone, CodecLZ4, CodecZstd} {
		k := newKey(t)
		require.NoError(t, NewCompressedStore(inner, codec, testMaxObject).Put(ctx, k, payload))
		keys[codec] = k
	}

	for _, reader := range []Codec{CodecNone, CodecLZ4, CodecZstd} {
		store := NewCompressedStore(inner, reader, testMaxObject)
		for writer, k := range keys {
			got, err := store.Get(ctx, k)
			require.NoError(t, err, "written with %s, read with %s", writer, reader)
			assert.Equal(t, payload, got)
		}
	}
}

func TestParseCodec(t *testing.T) {
	for in, want := range map[string]Codec{"": CodecNone, "none": CodecNone, "lz4": CodecLZ4, "zstd": CodecZstd} {
		got, err := ParseCodec(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseCodec("brotli")
	assert.Error(t, err)
}
