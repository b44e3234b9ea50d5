package query

import (
	"heapdb/internal/dberrors"
	"heapdb/internal/dbtype"
	"heapdb/internal/txn"
)

// Project maps each child tuple down to the named Fields, under OutputNames,
// optionally suppressing duplicates (by serialized-tuple key) when Distinct
// is set. Not part of the required spec operator set, but carried over from
// the teacher as a harmless supplemental projection operator.
type Project struct {
	fields      []Expr
	outputNames []string
	distinct    bool
	child       Operator
	desc        *dbtype.TupleDesc
	tid         txn.TransactionID
	*lookahead
}

// NewProject constructs a Project operator. fields and outputNames must be
// the same length.
func NewProject(fields []Expr, outputNames []string, distinct bool, child Operator) (*Project, error) {
	if len(fields) != len(outputNames) {
		return nil, dberrors.New(dberrors.SchemaMismatch, "Project: %d fields but %d output names", len(fields), len(outputNames))
	}
	desc := &dbtype.TupleDesc{Fields: make([]dbtype.FieldType, len(fields))}
	for i, f := range fields {
		ft := f.ExprType()
		ft.Name = outputNames[i]
		desc.Fields[i] = ft
	}
	return &Project{fields: fields, outputNames: outputNames, distinct: distinct, child: child, desc: desc}, nil
}

func (p *Project) Descriptor() *dbtype.TupleDesc { return p.desc }

func (p *Project) Children() []Operator { return []Operator{p.child} }

func (p *Project) SetChildren(children ...Operator) {
	if len(children) != 1 {
		panic("Project takes exactly one child")
	}
	p.child = children[0]
}

func (p *Project) Open(tid txn.TransactionID) error {
	if err := p.child.Open(tid); err != nil {
		return err
	}
	p.tid = tid
	next := pull(p.child)
	seen := map[string]struct{}(nil)
	if p.distinct {
		seen = make(map[string]struct{})
	}
	p.lookahead = newLookahead(func() (*dbtype.Tuple, error) {
		for {
			t, err := next()
			if err != nil || t == nil {
				return t, err
			}
			fields := make([]dbtype.Field, len(p.fields))
			for i, e := range p.fields {
				v, err := e.EvalExpr(t)
				if err != nil {
					return nil, err
				}
				fields[i] = v
			}
			out, err := dbtype.NewTuple(*p.desc, fields)
			if err != nil {
				return nil, err
			}
			if p.distinct {
				key, err := out.Key()
				if err != nil {
					return nil, err
				}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
			}
			return out, nil
		}
	})
	return nil
}

func (p *Project) Rewind() error {
	if err := p.child.Rewind(); err != nil {
		return err
	}
	return p.Open(p.tid)
}

func (p *Project) Close() error {
	p.lookahead = nil
	return p.child.Close()
}
