package storage

import (
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"sync"

	"heapdb/internal/dberrors"
	"heapdb/internal/dbtype"
	"heapdb/internal/txn"
)

// HeapFile is an unordered collection of tuples backed by a sequential
// array of HeapPages on disk. A file's TableID is a stable hash of its
// absolute path.
type HeapFile struct {
	path    string
	tableID int64
	desc    *dbtype.TupleDesc

	mu sync.Mutex // serializes file-growth (append-new-page) decisions
}

// NewHeapFile opens (creating if necessary) the backing file at path with
// the given schema.
func NewHeapFile(path string, desc *dbtype.TupleDesc) (*HeapFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o666)
	if err != nil {
		return nil, dberrors.Wrap(err, dberrors.InvalidPage, "opening heap file %s", path)
	}
	f.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &HeapFile{path: path, tableID: stableHash(abs), desc: desc}, nil
}

func stableHash(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

func (f *HeapFile) TableID() int64 { return f.tableID }

func (f *HeapFile) PageKey(pageNo int) PageID { return PageID{TableID: f.tableID, PageNo: pageNo} }

func (f *HeapFile) Descriptor() *dbtype.TupleDesc { return f.desc }

// NumPages returns ceil(fileLength / PageSize).
func (f *HeapFile) NumPages() int {
	info, err := os.Stat(f.path)
	if err != nil {
		return 0
	}
	size := info.Size()
	n := size / int64(PageSize)
	if size%int64(PageSize) != 0 {
		n++
	}
	return int(n)
}

// ReadPage seeks to pageNo*PageSize and reads exactly PageSize bytes.
func (f *HeapFile) ReadPage(pageNo int) (Page, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, dberrors.Wrap(err, dberrors.InvalidPage, "opening %s", f.path)
	}
	defer file.Close()

	offset := int64(pageNo) * int64(PageSize)
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, dberrors.Wrap(err, dberrors.InvalidPage, "seeking to page %d", pageNo)
	}

	buf := make([]byte, PageSize)
	if _, err := io.ReadFull(file, buf); err != nil {
		return nil, dberrors.Wrap(err, dberrors.InvalidPage, "short read for page %d of %s", pageNo, f.path)
	}

	return DeserializeHeapPage(f.PageKey(pageNo), f.desc, f, buf)
}

// WritePage seeks and writes exactly PageSize bytes, extending the file if needed.
func (f *HeapFile) WritePage(p Page) error {
	hp, ok := p.(*HeapPage)
	if !ok {
		return dberrors.New(dberrors.CorruptPage, "WritePage: not a *HeapPage")
	}

	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_RDWR, 0o666)
	if err != nil {
		return dberrors.Wrap(err, dberrors.InvalidPage, "opening %s", f.path)
	}
	defer file.Close()

	data, err := hp.Serialize()
	if err != nil {
		return err
	}

	offset := int64(hp.id.PageNo) * int64(PageSize)
	if _, err := file.WriteAt(data, offset); err != nil {
		return dberrors.Wrap(err, dberrors.InvalidPage, "writing page %d of %s", hp.id.PageNo, f.path)
	}
	return nil
}

// InsertTuple implements the HeapFile insertion algorithm: scan existing
// pages (acquiring each READ_WRITE via bp) for a free slot; if none is
// found, append an empty page and insert into it. It returns the single
// page whose image changed.
func (f *HeapFile) InsertTuple(bp PageGetter, tid txn.TransactionID, t *dbtype.Tuple) ([]Page, error) {
	n := f.NumPages()
	for i := 0; i < n; i++ {
		page, err := bp.GetPage(tid, f, i, ReadWrite)
		if err != nil {
			return nil, err
		}
		hp := page.(*HeapPage)
		if hp.GetNumEmptySlots() > 0 {
			if _, err := hp.InsertTuple(t); err != nil {
				return nil, err
			}
			return []Page{hp}, nil
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// Recount pages under the file lock, so that a page another goroutine
	// appended while we were scanning is not overwritten: the new page goes
	// after it. Pages appended meanwhile are not searched for a free slot.
	n = f.NumPages()
	newPageNo := n
	if err := f.WritePage(NewEmptyHeapPage(f.PageKey(newPageNo), f.desc, f)); err != nil {
		return nil, err
	}

	page, err := bp.GetPage(tid, f, newPageNo, ReadWrite)
	if err != nil {
		return nil, err
	}
	hp := page.(*HeapPage)
	if _, err := hp.InsertTuple(t); err != nil {
		return nil, err
	}
	return []Page{hp}, nil
}

// DeleteTuple acquires t.Rid's page READ_WRITE via bp and deletes t from it.
func (f *HeapFile) DeleteTuple(bp PageGetter, tid txn.TransactionID, t *dbtype.Tuple) ([]Page, error) {
	if t.Rid == nil {
		return nil, dberrors.New(dberrors.TupleNotOnPage, "tuple has no record id")
	}
	pid, ok := t.Rid.Page.(PageID)
	if !ok {
		return nil, dberrors.New(dberrors.TupleNotOnPage, "tuple's RecordID.Page is not a storage.PageID")
	}

	page, err := bp.GetPage(tid, f, pid.PageNo, ReadWrite)
	if err != nil {
		return nil, err
	}
	hp := page.(*HeapPage)
	if err := hp.DeleteTuple(t); err != nil {
		return nil, err
	}
	return []Page{hp}, nil
}

// Iterator opens lazily over page numbers [0, NumPages()); for each page it
// acquires the page READ_ONLY via bp and yields its slot iterator in turn.
func (f *HeapFile) Iterator(bp PageGetter, tid txn.TransactionID) (func() (*dbtype.Tuple, error), error) {
	pageNo := 0
	var cur func() (*dbtype.Tuple, error)
	closed := false

	return func() (*dbtype.Tuple, error) {
		if closed {
			return nil, nil
		}
		for {
			if cur == nil {
				if pageNo >= f.NumPages() {
					closed = true
					return nil, nil
				}
				page, err := bp.GetPage(tid, f, pageNo, ReadOnly)
				if err != nil {
					return nil, err
				}
				cur = page.(*HeapPage).TupleIterator()
			}
			t, err := cur()
			if err != nil {
				return nil, err
			}
			if t != nil {
				return t, nil
			}
			cur = nil
			pageNo++
		}
	}, nil
}
