package stats

import (
	"math"

	"heapdb/internal/catalog"
	"heapdb/internal/dberrors"
	"heapdb/internal/dbtype"
	"heapdb/internal/query"
	"heapdb/internal/storage"
	"heapdb/internal/txn"
)

// NumHistBins is the bucket count every per-field histogram is built with.
const NumHistBins = 100

// TableStats holds one histogram per field of a table, built by a two-pass
// sequential scan, plus the page/tuple counts the planner needs for cost
// estimation.
type TableStats struct {
	tableID       int64
	ioCostPerPage float64
	numPages      int
	totalTuples   int64

	intHists map[string]*IntHistogram
	strHists map[string]*StringHistogram
}

// ComputeTableStats runs the two-pass construction described in the spec:
// first a scan to count tuples and find each integer field's min/max (a
// string field's histogram domain is fixed by StringHash and needs no
// discovered bounds), then a rescan that feeds every value into its
// field's histogram.
func ComputeTableStats(tid txn.TransactionID, bp storage.PageGetter, file storage.DBFile, ioCostPerPage float64) (*TableStats, error) {
	desc := file.Descriptor()

	mins := make([]int64, desc.NumFields())
	maxs := make([]int64, desc.NumFields())
	for i, f := range desc.Fields {
		if f.Type == dbtype.IntType {
			mins[i] = math.MaxInt32
			maxs[i] = math.MinInt32
		}
	}

	var totalTuples int64
	if err := scanTable(tid, bp, file, func(t *dbtype.Tuple) error {
		totalTuples++
		for i, f := range desc.Fields {
			if f.Type != dbtype.IntType {
				continue
			}
			v := t.Fields[i].(dbtype.IntField).Value
			if v < mins[i] {
				mins[i] = v
			}
			if v > maxs[i] {
				maxs[i] = v
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	for i, f := range desc.Fields {
		if f.Type == dbtype.IntType && mins[i] > maxs[i] {
			mins[i] = 0
			maxs[i] = 0
		}
	}

	ts := &TableStats{
		tableID:       file.TableID(),
		ioCostPerPage: ioCostPerPage,
		numPages:      file.NumPages(),
		intHists:      make(map[string]*IntHistogram),
		strHists:      make(map[string]*StringHistogram),
	}
	for i, f := range desc.Fields {
		switch f.Type {
		case dbtype.IntType:
			ts.intHists[f.Name] = NewIntHistogram(NumHistBins, mins[i], maxs[i])
		case dbtype.StringType:
			ts.strHists[f.Name] = NewStringHistogram(NumHistBins)
		}
	}

	if err := scanTable(tid, bp, file, func(t *dbtype.Tuple) error {
		for i, f := range desc.Fields {
			switch f.Type {
			case dbtype.IntType:
				ts.intHists[f.Name].AddValue(t.Fields[i].(dbtype.IntField).Value)
			case dbtype.StringType:
				ts.strHists[f.Name].AddValue(t.Fields[i].(dbtype.StringField).Value)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	ts.totalTuples = totalTuples
	return ts, nil
}

func scanTable(tid txn.TransactionID, bp storage.PageGetter, file storage.DBFile, visit func(*dbtype.Tuple) error) error {
	scan := query.NewSeqScan(file, bp)
	if err := scan.Open(tid); err != nil {
		return err
	}
	defer scan.Close()

	for {
		ok, err := scan.HasNext()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		t, err := scan.Next()
		if err != nil {
			return err
		}
		if err := visit(t); err != nil {
			return err
		}
	}
}

// EstimateScanCost returns numPages * ioCostPerPage.
func (t *TableStats) EstimateScanCost() float64 {
	return float64(t.numPages) * t.ioCostPerPage
}

// EstimateTableCardinality returns round(totalTuples * sel).
func (t *TableStats) EstimateTableCardinality(sel float64) int64 {
	return int64(math.Round(float64(t.totalTuples) * sel))
}

// EstimateSelectivity dispatches to field's histogram. constant's type must
// match the field's declared type.
func (t *TableStats) EstimateSelectivity(field string, op dbtype.BoolOp, constant dbtype.Field) (float64, error) {
	if h, ok := t.intHists[field]; ok {
		iv, ok := constant.(dbtype.IntField)
		if !ok {
			return 0, dberrors.New(dberrors.TypeMismatch, "field %q is int, constant is %T", field, constant)
		}
		return h.EstimateSelectivity(op, iv.Value), nil
	}
	if h, ok := t.strHists[field]; ok {
		sv, ok := constant.(dbtype.StringField)
		if !ok {
			return 0, dberrors.New(dberrors.TypeMismatch, "field %q is string, constant is %T", field, constant)
		}
		return h.EstimateSelectivity(op, sv.Value), nil
	}
	return 0, dberrors.New(dberrors.InvalidPage, "no histogram for field %q", field)
}

// AvgSelectivity returns the named field's histogram's unnormalized
// avg-selectivity diagnostic.
func (t *TableStats) AvgSelectivity(field string, _ dbtype.BoolOp) (float64, error) {
	if h, ok := t.intHists[field]; ok {
		return h.AvgSelectivity(), nil
	}
	if h, ok := t.strHists[field]; ok {
		return h.AvgSelectivity(), nil
	}
	return 0, dberrors.New(dberrors.InvalidPage, "no histogram for field %q", field)
}

// ComputeStatistics builds a TableStats for every table in cat and returns
// a name-keyed registry, per spec's process-wide "name → TableStats"
// statistics registry.
func ComputeStatistics(cat catalog.Catalog, bp storage.PageGetter, ioCostPerPage float64) (map[string]*TableStats, error) {
	result := make(map[string]*TableStats)
	for _, id := range cat.TableIDs() {
		file, err := cat.DatabaseFile(id)
		if err != nil {
			return nil, err
		}
		name, err := cat.TableName(id)
		if err != nil {
			return nil, err
		}
		ts, err := ComputeTableStats(txn.NewTID(), bp, file, ioCostPerPage)
		if err != nil {
			return nil, err
		}
		result[name] = ts
	}
	return result, nil
}
