package codebook

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Usage tracks which token ids a stream of assignments has produced. It is
// the cheap way to spot starved or dead centroids after a fit: a healthy
// codebook should see most of its vocabulary on a representative corpus.
// Not safe for concurrent use.
type Usage struct {
	seen  *roaring.Bitmap
	total uint64
	k     int
}

// NewUsage creates a usage tracker for a codebook with k clusters.
func NewUsage(k int) *Usage {
	return &Usage{
		seen: roaring.New(),
		k:    k,
	}
}

// Observe records a batch of assigned token ids.
func (u *Usage) Observe(ids []int64) {
	for _, id := range ids {
		u.seen.Add(uint32(id))
	}
	u.total += uint64(len(ids))
}

// Distinct returns the number of distinct token ids observed.
func (u *Usage) Distinct() int { return int(u.seen.GetCardinality()) }

// Total returns the number of assignments observed.
func (u *Usage) Total() uint64 { return u.total }

// Coverage returns the fraction of the vocabulary observed at least once.
func (u *Usage) Coverage() float64 {
	if u.k == 0 {
		return 0
	}
	return float64(u.Distinct()) / float64(u.k)
}

// Unused returns the token ids never observed, in ascending order.
func (u *Usage) Unused() []int64 {
	unused := make([]int64, 0, u.k-u.Distinct())
	for id := 0; id < u.k; id++ {
		if !u.seen.Contains(uint32(id)) {
			unused = append(unused, int64(id))
		}
	}
	return unused
}
