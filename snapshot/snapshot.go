package snapshot

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/hupe1980/statclust"
	"github.com/hupe1980/statclust/blobstore"
	"github.com/hupe1980/statclust/codec"
	"github.com/hupe1980/statclust/internal/compress"
	"github.com/hupe1980/statclust/record"
)

const (
	// Magic identifies snapshot blobs.
	Magic = "SCL1"
	// Version is the current snapshot format version.
	Version uint16 = 1

	// CurrentName is the blob holding the name of the latest result snapshot.
	CurrentName = "CURRENT"
)

var (
	ErrInvalidMagic       = errors.New("snapshot: invalid magic number")
	ErrUnsupportedVersion = errors.New("snapshot: unsupported version")
	ErrChecksumMismatch   = errors.New("snapshot: checksum mismatch")
	ErrUnknownCodec       = errors.New("snapshot: unknown codec")
	ErrTruncated          = errors.New("snapshot: truncated header")
)

// Options control how snapshots are written.
type Options struct {
	Codec       codec.Codec
	Compression compress.Type
}

// Option configures snapshot writing.
type Option func(*Options)

// WithCodec sets the payload codec.
func WithCodec(c codec.Codec) Option {
	return func(o *Options) {
		o.Codec = c
	}
}

// WithCompression sets the payload compression.
func WithCompression(t compress.Type) Option {
	return func(o *Options) {
		o.Compression = t
	}
}

func applyOptions(opts []Option) Options {
	o := Options{
		Codec:       codec.Default,
		Compression: compress.ZSTD,
	}
	for _, fn := range opts {
		fn(&o)
	}
	if o.Codec == nil {
		o.Codec = codec.Default
	}
	return o
}

// Encode serializes v into a snapshot blob.
func Encode(v any, opts ...Option) ([]byte, error) {
	o := applyOptions(opts)

	name := o.Codec.Name()
	if _, ok := codec.ByName(name); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	if len(name) > 255 {
		return nil, fmt.Errorf("%w: name too long", ErrUnknownCodec)
	}

	raw, err := o.Codec.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode payload: %w", err)
	}

	block, err := compress.Compress(raw, o.Compression)
	if err != nil {
		return nil, fmt.Errorf("snapshot: compress payload: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(Magic) + 2 + 1 + len(name) + 1 + 4 + len(block))
	buf.WriteString(Magic)
	_ = binary.Write(&buf, binary.LittleEndian, Version)
	buf.WriteByte(byte(len(name)))
	buf.WriteString(name)
	buf.WriteByte(byte(o.Compression))
	_ = binary.Write(&buf, binary.LittleEndian, crc32.ChecksumIEEE(block))
	buf.Write(block)

	return buf.Bytes(), nil
}

// Header describes a snapshot blob.
type Header struct {
	Version     uint16
	Codec       string
	Compression compress.Type
	Checksum    uint32
}

func parseHeader(data []byte) (Header, []byte, error) {
	var h Header

	if len(data) < len(Magic)+3 {
		return h, nil, ErrTruncated
	}
	if string(data[:len(Magic)]) != Magic {
		return h, nil, ErrInvalidMagic
	}
	data = data[len(Magic):]

	h.Version = binary.LittleEndian.Uint16(data)
	if h.Version != Version {
		return h, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	data = data[2:]

	n := int(data[0])
	data = data[1:]
	if len(data) < n+1+4 {
		return h, nil, ErrTruncated
	}
	h.Codec = string(data[:n])
	h.Compression = compress.Type(data[n])
	h.Checksum = binary.LittleEndian.Uint32(data[n+1:])

	return h, data[n+5:], nil
}

// ReadHeader parses the header of a snapshot blob without decoding its payload.
func ReadHeader(data []byte) (Header, error) {
	h, _, err := parseHeader(data)
	return h, err
}

// Decode verifies a snapshot blob and decodes its payload into v.
func Decode(data []byte, v any) error {
	h, block, err := parseHeader(data)
	if err != nil {
		return err
	}

	if got := crc32.ChecksumIEEE(block); got != h.Checksum {
		return fmt.Errorf("%w: stored %08x, computed %08x", ErrChecksumMismatch, h.Checksum, got)
	}

	c, ok := codec.ByName(h.Codec)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCodec, h.Codec)
	}

	raw, err := compress.Decompress(block, h.Compression)
	if err != nil {
		return fmt.Errorf("snapshot: decompress payload: %w", err)
	}

	if err := c.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("snapshot: decode payload: %w", err)
	}
	return nil
}

// SaveResult writes a clustering result to store under name.
func SaveResult(ctx context.Context, store blobstore.BlobStore, name string, r *statclust.Result, opts ...Option) error {
	if r == nil {
		return fmt.Errorf("%w: nil result", statclust.ErrInvalidInput)
	}
	data, err := Encode(r, opts...)
	if err != nil {
		return err
	}
	return store.Put(ctx, name, data)
}

// LoadResult reads a clustering result and checks its alignment invariants.
func LoadResult(ctx context.Context, store blobstore.BlobStore, name string) (*statclust.Result, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, err
	}

	r := new(statclust.Result)
	if err := Decode(data, r); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return r, nil
}

// Commit points CURRENT at the result snapshot name.
func Commit(ctx context.Context, store blobstore.BlobStore, name string) error {
	return store.Put(ctx, CurrentName, []byte(name))
}

// Current returns the result snapshot name CURRENT points at.
func Current(ctx context.Context, store blobstore.BlobStore) (string, error) {
	data, err := blobstore.ReadAll(ctx, store, CurrentName)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimSpace(data)), nil
}

// LoadCurrent loads the result CURRENT points at.
func LoadCurrent(ctx context.Context, store blobstore.BlobStore) (*statclust.Result, error) {
	name, err := Current(ctx, store)
	if err != nil {
		return nil, err
	}
	return LoadResult(ctx, store, name)
}

type recordSet struct {
	Records []recordEntry `json:"records" msgpack:"records"`
}

type recordEntry struct {
	ID      string    `json:"id" msgpack:"id"`
	Metrics []float64 `json:"metrics" msgpack:"metrics"`
}

// SaveRecords writes raw records to store under name.
func SaveRecords(ctx context.Context, store blobstore.BlobStore, name string, records []record.Record, opts ...Option) error {
	set := recordSet{Records: make([]recordEntry, len(records))}
	for i, rec := range records {
		set.Records[i] = recordEntry{ID: rec.ID(), Metrics: rec.Metrics()}
	}

	data, err := Encode(set, opts...)
	if err != nil {
		return err
	}
	return store.Put(ctx, name, data)
}

// LoadRecords reads raw records written by SaveRecords.
func LoadRecords(ctx context.Context, store blobstore.BlobStore, name string) ([]record.Record, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, err
	}

	var set recordSet
	if err := Decode(data, &set); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	records := make([]record.Record, len(set.Records))
	for i, e := range set.Records {
		records[i] = record.New(e.ID, e.Metrics...)
	}
	if _, err := record.Arity(records); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return records, nil
}
