package storage

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/cogere/artifact-host/internal/core/domain"
	"github.com/cogere/artifact-host/internal/core/ports"
)

// Codec identifies how an object's bytes were encoded at rest. The value is
// written as the first byte of every stored object and must never change.
type Codec uint8

const (
	CodecNone Codec = 0
	CodecLZ4  Codec = 1
	CodecZstd Codec = 2
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecLZ4:
		return "lz4"
	case CodecZstd:
		return "zstd"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

// ParseCodec parses the BLOB_COMPRESSION setting.
func ParseCodec(name string) (Codec, error) {
	switch name {
	case "", "none":
		return CodecNone, nil
	case "lz4":
		return CodecLZ4, nil
	case "zstd":
		return CodecZstd, nil
	default:
		return 0, fmt.Errorf("unknown blob compression %q", name)
	}
}

// maxZstdPrealloc caps the zstd output buffer reserved up front. The
// decoder grows it as needed.
const maxZstdPrealloc = 64 << 20

// zstd encoders and decoders are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("storage: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("storage: zstd decoder initialization failed: " + err.Error())
	}
}

// frameMagic marks an object written by CompressedStore. Objects without it
// were stored before compression was enabled and are returned unchanged. Jar
// and zip archives start with "PK", so they never collide with it.
var frameMagic = []byte{0x89, 'C', 'G', 'Z'}

// CompressedStore compresses objects before handing them to the wrapped
// store. Layout: frame magic, codec byte, uvarint uncompressed length,
// payload. Objects that do not shrink are stored with CodecNone, so plugin
// archives that are already compressed cost nothing extra to read back.
//
// With CodecNone the store writes objects raw but still decodes framed ones,
// so compression can be switched on or off over an existing store.
type CompressedStore struct {
	inner     ports.BlobStore
	codec     Codec
	maxObject int64
}

// NewCompressedStore wraps inner. maxObject bounds the uncompressed size of
// any object the store accepts or decodes; zero or less means no bound.
func NewCompressedStore(inner ports.BlobStore, codec Codec, maxObject int64) *CompressedStore {
	return &CompressedStore{inner: inner, codec: codec, maxObject: maxObject}
}

func (s *CompressedStore) Put(ctx context.Context, key domain.BlobKey, data []byte) error {
	if s.maxObject > 0 && int64(len(data)) > s.maxObject {
		return ioFailure("put", key, fmt.Errorf("object is %d bytes, limit is %d", len(data), s.maxObject))
	}
	if s.codec == CodecNone {
		return s.inner.Put(ctx, key, data)
	}
	encoded, err := encode(s.codec, data)
	if err != nil {
		return ioFailure("put", key, err)
	}
	return s.inner.Put(ctx, key, encoded)
}

func (s *CompressedStore) Get(ctx context.Context, key domain.BlobKey) ([]byte, error) {
	raw, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	data, err := s.decode(raw)
	if err != nil {
		return nil, ioFailure("get", key, err)
	}
	return data, nil
}

func (s *CompressedStore) Delete(ctx context.Context, key domain.BlobKey) error {
	return s.inner.Delete(ctx, key)
}

func (s *CompressedStore) Exists(ctx context.Context, key domain.BlobKey) (bool, error) {
	return s.inner.Exists(ctx, key)
}

func encode(codec Codec, data []byte) ([]byte, error) {
	header := make([]byte, 0, len(frameMagic)+1+binary.MaxVarintLen64)
	header = append(header, frameMagic...)
	header = append(header, 0)
	header = binary.AppendUvarint(header, uint64(len(data)))
	codecAt := len(frameMagic)

	var payload []byte
	switch codec {
	case CodecNone:
	case CodecLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		// n == 0 means the block is incompressible.
		if n > 0 {
			payload = buf[:n]
		}
	case CodecZstd:
		payload = zstdEncoder.EncodeAll(data, nil)
	default:
		return nil, fmt.Errorf("unknown codec %s", codec)
	}

	if payload == nil || len(payload) >= len(data) {
		header[codecAt] = byte(CodecNone)
		return append(header, data...), nil
	}
	header[codecAt] = byte(codec)
	return append(header, payload...), nil
}

func (s *CompressedStore) decode(raw []byte) ([]byte, error) {
	if !bytes.HasPrefix(raw, frameMagic) {
		return raw, nil
	}
	raw = raw[len(frameMagic):]
	if len(raw) == 0 {
		return nil, fmt.Errorf("stored object has no codec header")
	}
	codec := Codec(raw[0])
	size, n := binary.Uvarint(raw[1:])
	if n <= 0 {
		return nil, fmt.Errorf("stored object has a corrupt length header")
	}
	if s.maxObject > 0 && size > uint64(s.maxObject) {
		return nil, fmt.Errorf("stored object claims %d bytes, limit is %d", size, s.maxObject)
	}
	payload := raw[1+n:]

	switch codec {
	case CodecNone:
		if uint64(len(payload)) != size {
			return nil, fmt.Errorf("stored object is %d bytes, header says %d", len(payload), size)
		}
		return payload, nil
	case CodecLZ4:
		// An lz4 block expands at most 255x.
		if size > uint64(len(payload))*255+16 {
			return nil, fmt.Errorf("lz4 object claims %d bytes from a %d byte block", size, len(payload))
		}
		out := make([]byte, size)
		read, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if uint64(read) != size {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, size)
		}
		return out, nil
	case CodecZstd:
		prealloc := size
		if prealloc > maxZstdPrealloc {
			prealloc = maxZstdPrealloc
		}
		out, err := zstdDecoder.DecodeAll(payload, make([]byte, 0, prealloc))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if uint64(len(out)) != size {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(out), size)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown codec %s", codec)
	}
}
