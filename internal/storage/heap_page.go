package storage

import (
	"bytes"

	"heapdb/internal/dberrors"
	"heapdb/internal/dbtype"
	"heapdb/internal/txn"
)

// HeapPage is a fixed-size slotted page: a bitmap header (one bit per slot,
// LSB-first within each byte) followed by a dense array of fixed-size tuple
// slots.
//
//	[ header: ceil(S/8) bytes ][ slot 0 ][ slot 1 ] ... [ slot S-1 ][ zero padding ]
type HeapPage struct {
	id       PageID
	desc     *dbtype.TupleDesc
	file     *HeapFile
	numSlots int
	used     []bool
	tuples   []*dbtype.Tuple

	dirty     bool
	dirtiedBy txn.TransactionID
}

// NumSlots returns floor((PageSize*8) / (bytesPerTuple*8 + 1)), the number
// of tuple slots a page of this schema can hold.
func NumSlots(desc *dbtype.TupleDesc) int {
	bytesPerTuple := desc.BytesPerTuple()
	return (PageSize * 8) / (bytesPerTuple*8 + 1)
}

// headerBytes returns ceil(numSlots/8).
func headerBytes(numSlots int) int {
	return (numSlots + 7) / 8
}

// NewEmptyHeapPage constructs a page with no tuples, as if freshly allocated
// by extending a file.
func NewEmptyHeapPage(id PageID, desc *dbtype.TupleDesc, file *HeapFile) *HeapPage {
	n := NumSlots(desc)
	return &HeapPage{
		id:       id,
		desc:     desc,
		file:     file,
		numSlots: n,
		used:     make([]bool, n),
		tuples:   make([]*dbtype.Tuple, n),
	}
}

// DeserializeHeapPage parses a page's on-disk bytes. It fails with
// CorruptPage if the length isn't exactly PageSize.
func DeserializeHeapPage(id PageID, desc *dbtype.TupleDesc, file *HeapFile, data []byte) (*HeapPage, error) {
	if len(data) != PageSize {
		return nil, dberrors.New(dberrors.CorruptPage, "page %v: expected %d bytes, got %d", id, PageSize, len(data))
	}

	n := NumSlots(desc)
	hb := headerBytes(n)
	header := data[:hb]
	body := data[hb:]
	tupleSize := desc.BytesPerTuple()

	p := &HeapPage{
		id:       id,
		desc:     desc,
		file:     file,
		numSlots: n,
		used:     make([]bool, n),
		tuples:   make([]*dbtype.Tuple, n),
	}

	for i := 0; i < n; i++ {
		bit := header[i/8] & (1 << uint(i%8))
		if bit == 0 {
			continue
		}
		start := i * tupleSize
		end := start + tupleSize
		if end > len(body) {
			return nil, dberrors.New(dberrors.CorruptPage, "page %v: slot %d out of bounds", id, i)
		}
		buf := bytes.NewBuffer(body[start:end])
		t, err := dbtype.ReadTupleFrom(buf, desc)
		if err != nil {
			return nil, dberrors.Wrap(err, dberrors.CorruptPage, "page %v: slot %d", id, i)
		}
		t.Rid = &dbtype.RecordID{Page: id, Slot: i}
		p.used[i] = true
		p.tuples[i] = t
	}

	return p, nil
}

// Serialize emits the header bitmap followed by slot payloads, zero-padded
// to PageSize. Unused-slot bytes are written as zero.
func (p *HeapPage) Serialize() ([]byte, error) {
	hb := headerBytes(p.numSlots)
	tupleSize := p.desc.BytesPerTuple()

	buf := make([]byte, PageSize)
	header := buf[:hb]
	for i := 0; i < p.numSlots; i++ {
		if p.used[i] {
			header[i/8] |= 1 << uint(i%8)
		}
	}

	body := buf[hb:]
	for i := 0; i < p.numSlots; i++ {
		if !p.used[i] {
			continue
		}
		var b bytes.Buffer
		if err := p.tuples[i].WriteTo(&b); err != nil {
			return nil, err
		}
		if b.Len() != tupleSize {
			return nil, dberrors.New(dberrors.CorruptPage, "slot %d serialized to %d bytes, expected %d", i, b.Len(), tupleSize)
		}
		start := i * tupleSize
		copy(body[start:start+tupleSize], b.Bytes())
	}

	return buf, nil
}

// GetNumEmptySlots returns the number of slots with their header bit unset.
func (p *HeapPage) GetNumEmptySlots() int {
	count := 0
	for _, u := range p.used {
		if !u {
			count++
		}
	}
	return count
}

// IsSlotUsed reports whether slot i is occupied.
func (p *HeapPage) IsSlotUsed(i int) bool { return p.used[i] }

// MarkSlotUsed sets or clears the header bit for slot i.
func (p *HeapPage) MarkSlotUsed(i int, used bool) {
	p.used[i] = used
	if !used {
		p.tuples[i] = nil
	}
}

var ErrPageFull = dberrors.New(dberrors.PageFull, "page is full")

// InsertTuple writes t into the lowest-index empty slot and sets t's RecordID.
func (p *HeapPage) InsertTuple(t *dbtype.Tuple) (*dbtype.RecordID, error) {
	if !t.Desc.Equals(p.desc) {
		return nil, dberrors.New(dberrors.SchemaMismatch, "tuple desc does not match page desc")
	}
	for i := 0; i < p.numSlots; i++ {
		if !p.used[i] {
			p.used[i] = true
			p.tuples[i] = t
			rid := &dbtype.RecordID{Page: p.id, Slot: i}
			t.Rid = rid
			return rid, nil
		}
	}
	return nil, dberrors.New(dberrors.PageFull, "page %v is full", p.id)
}

// DeleteTuple clears the slot t.Rid names, after checking it matches this
// page, is in use, and its stored contents equal t.
func (p *HeapPage) DeleteTuple(t *dbtype.Tuple) error {
	if t.Rid == nil {
		return dberrors.New(dberrors.TupleNotOnPage, "tuple has no record id")
	}
	pid, ok := t.Rid.Page.(PageID)
	if !ok || pid != p.id {
		return dberrors.New(dberrors.TupleNotOnPage, "tuple's page %v does not match %v", t.Rid.Page, p.id)
	}
	slot := t.Rid.Slot
	if slot < 0 || slot >= p.numSlots || !p.used[slot] {
		return dberrors.New(dberrors.TupleNotOnPage, "slot %d not in use on page %v", slot, p.id)
	}
	if !p.tuples[slot].Equals(t) {
		return dberrors.New(dberrors.TupleNotOnPage, "stored tuple at slot %d does not match", slot)
	}
	p.used[slot] = false
	p.tuples[slot] = nil
	return nil
}

// TupleIterator returns a one-shot function yielding the page's tuples in
// slot order.
func (p *HeapPage) TupleIterator() func() (*dbtype.Tuple, error) {
	i := 0
	return func() (*dbtype.Tuple, error) {
		for i < p.numSlots {
			slot := i
			i++
			if p.used[slot] {
				return p.tuples[slot], nil
			}
		}
		return nil, nil
	}
}

func (p *HeapPage) IsDirty() bool { return p.dirty }

func (p *HeapPage) DirtiedBy() (txn.TransactionID, bool) { return p.dirtiedBy, p.dirty }

func (p *HeapPage) SetDirty(tid txn.TransactionID, dirty bool) {
	p.dirty = dirty
	if dirty {
		p.dirtiedBy = tid
	}
}

func (p *HeapPage) File() DBFile { return p.file }

func (p *HeapPage) ID() PageID { return p.id }
