package query

import "heapdb/internal/dbtype"

// lookahead turns a "fetch next tuple, or nil at end-of-stream" function
// into the buffered HasNext/Next pair the Operator interface exposes.
// Every operator below builds one of these in Open and resets it to nil in
// Close, which is what makes Open idempotent on a closed operator.
type lookahead struct {
	fetch    func() (*dbtype.Tuple, error)
	buffered *dbtype.Tuple
	have     bool
}

func newLookahead(fetch func() (*dbtype.Tuple, error)) *lookahead {
	return &lookahead{fetch: fetch}
}

func (l *lookahead) HasNext() (bool, error) {
	if l.have {
		return l.buffered != nil, nil
	}
	t, err := l.fetch()
	if err != nil {
		return false, err
	}
	l.buffered = t
	l.have = true
	return t != nil, nil
}

func (l *lookahead) Next() (*dbtype.Tuple, error) {
	if !l.have {
		if _, err := l.HasNext(); err != nil {
			return nil, err
		}
	}
	t := l.buffered
	l.have = false
	l.buffered = nil
	return t, nil
}
