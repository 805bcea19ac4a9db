package memofib

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/memofib/blobstore"
	"github.com/hupe1980/memofib/codec"
	"github.com/hupe1980/memofib/internal/conv"
	"github.com/hupe1980/memofib/internal/resource"
)

// Snapshot layout:
//
//	magic "MFIB" | version u8 | compression u8 | compressed body | crc32c(body) u32le
//
// body:
//
//	capacity uvarint | policy u8 | len(bitmap) uvarint | roaring bitmap | varint value per computed index
const (
	snapshotMagic   = "MFIB"
	snapshotVersion = 1
	headerSize      = len(snapshotMagic) + 2
	trailerSize     = 4
)

// DefaultMaxSnapshotSlots bounds the capacity DecodeSnapshot accepts.
// See WithMaxSnapshotSlots.
const DefaultMaxSnapshotSlots = 1 << 24

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// EncodeSnapshot writes t to w. policy records how the values were computed
// so that DecodeSnapshot can validate them.
func EncodeSnapshot(w io.Writer, t *Table, policy OverflowPolicy, c codec.Compression) error {
	if t == nil {
		return ErrNilTable
	}

	bm, err := t.computed.ToBytes()
	if err != nil {
		return fmt.Errorf("failed to serialize bitmap: %w", err)
	}

	body := make([]byte, 0, 16+len(bm)+t.Computed()*binary.MaxVarintLen64)
	body = binary.AppendUvarint(body, uint64(t.Len()))
	body = append(body, byte(policy))
	body = binary.AppendUvarint(body, uint64(len(bm)))
	body = append(body, bm...)
	it := t.computed.Iterator()
	for it.HasNext() {
		body = binary.AppendVarint(body, t.values[it.Next()])
	}

	var compressed bytes.Buffer
	cw, err := codec.NewWriter(c, &compressed)
	if err != nil {
		return err
	}
	if _, err := cw.Write(body); err != nil {
		_ = cw.Close()
		return err
	}
	if err := cw.Close(); err != nil {
		return err
	}

	out := make([]byte, 0, headerSize+compressed.Len()+trailerSize)
	out = append(out, snapshotMagic...)
	out = append(out, snapshotVersion, byte(c))
	out = append(out, compressed.Bytes()...)
	out = binary.LittleEndian.AppendUint32(out, crc32.Checksum(body, castagnoli))

	_, err = w.Write(out)
	return err
}

// DecodeSnapshot reads a table written by EncodeSnapshot and validates it.
//
// Every computed slot must hold the Fibonacci value of its index under the
// recorded policy; otherwise ErrCorruptSnapshot is returned. Tables with more
// than DefaultMaxSnapshotSlots slots are rejected before allocation.
func DecodeSnapshot(r io.Reader) (*Table, OverflowPolicy, error) {
	return decodeSnapshot(r, DefaultMaxSnapshotSlots)
}

// maxBodySize is the largest body a table of maxSlots slots can encode to:
// a roaring array container entry plus a varint per slot, container
// headers, and the fixed fields.
func maxBodySize(maxSlots int) int64 {
	n := int64(maxSlots)
	return n*(2+binary.MaxVarintLen64) + 8*(n>>16+1) + 64
}

func decodeSnapshot(r io.Reader, maxSlots int) (*Table, OverflowPolicy, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}

	if len(data) < headerSize+trailerSize || string(data[:len(snapshotMagic)]) != snapshotMagic {
		return nil, 0, corrupt("bad magic", nil)
	}
	if v := data[len(snapshotMagic)]; v != snapshotVersion {
		return nil, 0, corrupt(fmt.Sprintf("unsupported version %d", v), nil)
	}

	c := codec.Compression(data[len(snapshotMagic)+1])
	if !c.Valid() {
		return nil, 0, corrupt("unknown compression", codec.ErrUnsupported)
	}

	cr, err := codec.NewReader(c, bytes.NewReader(data[headerSize:len(data)-trailerSize]))
	if err != nil {
		return nil, 0, corrupt("decompress", err)
	}
	defer cr.Close()

	limit := maxBodySize(maxSlots)
	body, err := io.ReadAll(io.LimitReader(cr, limit+1))
	if err != nil {
		return nil, 0, corrupt("decompress", err)
	}
	if int64(len(body)) > limit {
		return nil, 0, corrupt("body exceeds size limit", nil)
	}

	want := binary.LittleEndian.Uint32(data[len(data)-trailerSize:])
	if crc32.Checksum(body, castagnoli) != want {
		return nil, 0, corrupt("checksum mismatch", nil)
	}

	return decodeBody(body, maxSlots)
}

func decodeBody(body []byte, maxSlots int) (*Table, OverflowPolicy, error) {
	br := bytes.NewReader(body)

	rawCap, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, 0, corrupt("capacity", err)
	}
	capacity, err := conv.Uint64ToInt(rawCap)
	if err != nil || capacity < 2 || rawCap > math.MaxUint32 {
		return nil, 0, corrupt(fmt.Sprintf("capacity %d", rawCap), err)
	}
	if capacity > maxSlots {
		return nil, 0, corrupt(fmt.Sprintf("capacity %d exceeds limit %d", capacity, maxSlots), nil)
	}

	pb, err := br.ReadByte()
	if err != nil {
		return nil, 0, corrupt("policy", err)
	}
	policy := OverflowPolicy(pb)
	if policy != OverflowError && policy != OverflowWrap {
		return nil, 0, corrupt(fmt.Sprintf("unknown policy %d", pb), nil)
	}

	bmLen, err := binary.ReadUvarint(br)
	if err != nil || bmLen > uint64(br.Len()) {
		return nil, 0, corrupt("bitmap length", err)
	}
	bmData := make([]byte, bmLen)
	if _, err := io.ReadFull(br, bmData); err != nil {
		return nil, 0, corrupt("bitmap", err)
	}

	computed := roaring.New()
	if err := computed.UnmarshalBinary(bmData); err != nil {
		return nil, 0, corrupt("bitmap", err)
	}
	if !computed.IsEmpty() && int(computed.Maximum()) >= capacity {
		return nil, 0, corrupt("computed index beyond capacity", nil)
	}

	t := &Table{
		values:   make([]int64, capacity),
		computed: computed,
	}

	it := computed.Iterator()
	for it.HasNext() {
		i := it.Next()
		v, err := binary.ReadVarint(br)
		if err != nil {
			return nil, 0, corrupt(fmt.Sprintf("value %d", i), err)
		}
		t.values[i] = v
	}
	if br.Len() != 0 {
		return nil, 0, corrupt("trailing bytes", nil)
	}

	if err := validate(t, policy); err != nil {
		return nil, 0, err
	}

	return t, policy, nil
}

func validate(t *Table, policy OverflowPolicy) error {
	for i := range 2 {
		if _, ok := t.Lookup(i); !ok {
			return corrupt(fmt.Sprintf("base slot %d not computed", i), nil)
		}
	}

	top := int(t.computed.Maximum())
	if policy == OverflowError && top > MaxIndex {
		return corrupt(fmt.Sprintf("slot %d out of int64 range", top), nil)
	}

	// int64 addition wraps, which matches OverflowWrap. Under OverflowError
	// top <= MaxIndex, so every compared value is exact.
	a, b := int64(1), int64(1)
	for i := 0; i <= top; i++ {
		if v, ok := t.Lookup(i); ok && v != a {
			return corrupt(fmt.Sprintf("slot %d does not hold fib(%d)", i, i), nil)
		}
		a, b = b, a+b
	}

	return nil
}

// SaveSnapshot encodes t with the configured compression and writes it to
// store under name. With WithSnapshotIOLimit the blob is streamed through a
// throttled writer; otherwise it is written with a single Put.
func (c *Calculator) SaveSnapshot(ctx context.Context, store blobstore.Store, name string, t *Table) (err error) {
	start := time.Now()
	size := 0
	defer func() {
		c.opts.metricsCollector.RecordSnapshot("save", size, time.Since(start), err)
		c.opts.logger.LogSnapshot(ctx, "save", name, size, err)
	}()

	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, t, c.opts.overflow, c.opts.compression); err != nil {
		return err
	}
	size = buf.Len()

	if c.opts.ioLimitBytesPerSec <= 0 {
		if err := store.Put(ctx, name, buf.Bytes()); err != nil {
			return fmt.Errorf("put snapshot %q: %w", name, err)
		}
		return nil
	}

	blob, err := store.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("create snapshot %q: %w", name, err)
	}

	if _, err := io.Copy(resource.NewRateLimitedWriter(ctx, blob, c.rc), &buf); err != nil {
		return errors.Join(fmt.Errorf("write snapshot %q: %w", name, err), blob.Abort())
	}

	if err := blob.Close(); err != nil {
		return errors.Join(fmt.Errorf("commit snapshot %q: %w", name, err), blob.Abort())
	}

	return nil
}

// ListSnapshots returns the names of the blobs in store under prefix, sorted.
func (c *Calculator) ListSnapshots(ctx context.Context, store blobstore.Store, prefix string) ([]string, error) {
	names, err := store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list snapshots %q: %w", prefix, err)
	}
	return names, nil
}

// DeleteSnapshot removes the snapshot stored under name.
func (c *Calculator) DeleteSnapshot(ctx context.Context, store blobstore.Store, name string) (err error) {
	defer func() {
		c.opts.logger.LogSnapshot(ctx, "delete", name, 0, err)
	}()

	if err := store.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete snapshot %q: %w", name, err)
	}
	return nil
}

// LoadSnapshot reads and validates the table stored under name.
//
// A table saved with OverflowWrap is rejected by a Calculator using
// OverflowError if it holds indices whose values cannot be exact.
func (c *Calculator) LoadSnapshot(ctx context.Context, store blobstore.Store, name string) (t *Table, err error) {
	start := time.Now()
	size := 0
	defer func() {
		c.opts.metricsCollector.RecordSnapshot("load", size, time.Since(start), err)
		c.opts.logger.LogSnapshot(ctx, "load", name, size, err)
	}()

	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %q: %w", name, err)
	}
	size = len(data)

	t, policy, err := decodeSnapshot(bytes.NewReader(data), c.opts.maxSnapshotSlots)
	if err != nil {
		return nil, err
	}

	if policy == OverflowWrap && c.opts.overflow == OverflowError {
		if top := int(t.computed.Maximum()); top > MaxIndex {
			return nil, corrupt(fmt.Sprintf("wrapped value at slot %d under error policy", top), nil)
		}
	}

	return t, nil
}
