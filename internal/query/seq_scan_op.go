package query

import (
	"heapdb/internal/dbtype"
	"heapdb/internal/storage"
	"heapdb/internal/txn"
)

// SeqScan is the leaf Operator that reads every tuple of one table through
// the buffer pool, in page/slot order.
type SeqScan struct {
	file storage.DBFile
	bp   storage.PageGetter
	tid  txn.TransactionID
	*lookahead
}

// NewSeqScan constructs a sequential scan over file, reading pages through bp.
func NewSeqScan(file storage.DBFile, bp storage.PageGetter) *SeqScan {
	return &SeqScan{file: file, bp: bp}
}

func (s *SeqScan) Descriptor() *dbtype.TupleDesc { return s.file.Descriptor() }

func (s *SeqScan) Children() []Operator { return nil }

func (s *SeqScan) SetChildren(children ...Operator) {
	if len(children) != 0 {
		panic("SeqScan takes no children")
	}
}

func (s *SeqScan) Open(tid txn.TransactionID) error {
	s.tid = tid
	fetch, err := s.file.Iterator(s.bp, tid)
	if err != nil {
		return err
	}
	s.lookahead = newLookahead(fetch)
	return nil
}

func (s *SeqScan) Rewind() error {
	fetch, err := s.file.Iterator(s.bp, s.tid)
	if err != nil {
		return err
	}
	s.lookahead = newLookahead(fetch)
	return nil
}

func (s *SeqScan) Close() error {
	s.lookahead = nil
	return nil
}
