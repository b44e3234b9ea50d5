package stats

import (
	"github.com/tylertreat/BoomFilters"

	"heapdb/internal/dbtype"
)

// stringDomainMin and stringDomainMax bound StringHash's output range: the
// hash of the empty string, and the hash of "\x7f\x7f\x7f\x7f" (0x7f is the
// top 7-bit ASCII byte). A string whose first four bytes are all ASCII
// hashes within [stringDomainMin, stringDomainMax]; a byte above 0x7f in
// those positions hashes above stringDomainMax.
const (
	stringDomainMin int64 = 0
)

var stringDomainMax = StringHash("\x7f\x7f\x7f\x7f")

// StringHash maps a string to an integer, preserving lexicographic order
// over its first four bytes: it is a fixed order-preserving hash, not a
// general-purpose one, which is exactly what selectivity estimation over an
// ordered domain needs. Strings that agree on their first four bytes hash
// equal; ordering beyond that point is not preserved, which is an accepted
// approximation for histogram bucketing.
func StringHash(s string) int64 {
	var v int64
	for i := 0; i < 4; i++ {
		var b int64
		if i < len(s) {
			b = int64(s[i])
		}
		v += b << uint(8*(3-i))
	}
	return v
}

// StringHistogram estimates selectivity over a string column by hashing
// each value to an integer via StringHash and delegating to an IntHistogram
// over the fixed [stringDomainMin, stringDomainMax] domain.
type StringHistogram struct {
	ints *IntHistogram
	cms  *boom.CountMinSketch
}

// NewStringHistogram builds a StringHistogram with numBuckets buckets.
func NewStringHistogram(numBuckets int) *StringHistogram {
	return &StringHistogram{
		ints: NewIntHistogram(numBuckets, stringDomainMin, stringDomainMax),
		cms:  boom.NewCountMinSketch(0.001, 0.999),
	}
}

// AddValue records one occurrence of s.
func (h *StringHistogram) AddValue(s string) {
	h.ints.AddValue(StringHash(s))
	h.cms.Add([]byte(s))
}

// EstimateSelectivity estimates the fraction of rows satisfying `field op s`
// via the underlying hashed IntHistogram (the spec-mandated exact path).
func (h *StringHistogram) EstimateSelectivity(op dbtype.BoolOp, s string) float64 {
	return h.ints.EstimateSelectivity(op, StringHash(s))
}

// AvgSelectivity delegates to the underlying IntHistogram.
func (h *StringHistogram) AvgSelectivity() float64 { return h.ints.AvgSelectivity() }

// ApproxFrequency is a supplemental diagnostic, not required by the
// selectivity contract above: an approximate point frequency for s from a
// Count-Min Sketch fed in parallel with the hash/bucket histogram, useful
// for a planner that wants a cheap point estimate without touching a
// bucket's exact count.
func (h *StringHistogram) ApproxFrequency(s string) float64 {
	total := h.cms.TotalCount()
	if total == 0 {
		return 0
	}
	return float64(h.cms.Count([]byte(s))) / float64(total)
}
