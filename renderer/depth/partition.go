// Package depth splits the visible depth range into slices that can each be
// rendered with the full precision of a single depth buffer.
package depth

import (
	"sort"

	"github.com/chewxy/math32"
)

// Extent is the [NearZ, FarZ] depth span of one drawable. Depths are positive
// distances along the view axis.
type Extent struct {
	NearZ float32
	FarZ  float32
}

// A Partition covers the depth range [NearZ, FarZ).
type Partition struct {
	Index int
	NearZ float32
	FarZ  float32

	// Largest far face of the entries whose near face lies in this
	// partition; populated by Assign.
	MaxFarZ float32

	// Number of entries assigned to this partition.
	Count int
}

// The near and far planes for rendering this partition. The far plane is
// pushed out to enclose every assigned entry and then by the bias factor so
// geometry lying exactly on a boundary does not flicker between partitions.
func (p Partition) DepthRange(bias float32) (near, far float32) {
	far = p.FarZ
	if p.MaxFarZ > far {
		far = p.MaxFarZ
	}
	return p.NearZ, far * (1 + bias)
}

// Contains reports whether z falls in [NearZ, FarZ).
func (p Partition) Contains(z float32) bool {
	return z >= p.NearZ && z < p.FarZ
}

// The Partitioner chooses equal-ratio partition boundaries.
type Partitioner struct {
	// Maximum FarZ/NearZ ratio per partition.
	MaxRatio float32

	// Upper bound for the number of partitions. If the depth range cannot be
	// covered with MaxRatio partitions, the ratio is allowed to grow.
	MaxPartitions int
}

// Create a partitioner.
func NewPartitioner(maxRatio float32, maxPartitions int) *Partitioner {
	if maxRatio <= 1 {
		maxRatio = 2
	}
	if maxPartitions < 1 {
		maxPartitions = 1
	}
	return &Partitioner{
		MaxRatio:      maxRatio,
		MaxPartitions: maxPartitions,
	}
}

// Partition the depth range spanned by the given extents. The returned slice
// is ordered near to far and covers [min NearZ, max FarZ] without gaps.
// Every extent whose FarZ/NearZ does not exceed the partition ratio is
// contained in at most two adjacent partitions.
func (p *Partitioner) Partition(extents []Extent) []Partition {
	minNear, maxFar := math32.Inf(1), float32(0)
	for _, ext := range extents {
		if !(ext.NearZ > 0) || ext.FarZ < ext.NearZ {
			continue
		}
		minNear = math32.Min(minNear, ext.NearZ)
		maxFar = math32.Max(maxFar, ext.FarZ)
	}
	if math32.IsInf(minNear, 1) {
		return nil
	}

	count, ratio := p.partitionCount(maxFar / minNear)
	parts := make([]Partition, count)
	near := minNear
	for i := 0; i < count; i++ {
		far := near * ratio
		if i == count-1 {
			far = maxFar
		}
		parts[i] = Partition{Index: i, NearZ: near, FarZ: far}
		near = far
	}

	return parts
}

// The number of partitions and the per-partition ratio needed to cover the
// total depth ratio.
func (p *Partitioner) partitionCount(totalRatio float32) (int, float32) {
	if totalRatio <= p.MaxRatio {
		return 1, math32.Max(totalRatio, 1)
	}

	count := int(math32.Ceil(math32.Log(totalRatio) / math32.Log(p.MaxRatio)))
	if count > p.MaxPartitions {
		count = p.MaxPartitions
	}
	return count, math32.Pow(totalRatio, 1/float32(count))
}

// Locate the partition holding depth z. Depths outside the covered range map
// to the first or last partition. Returns -1 if parts is empty.
func Locate(parts []Partition, z float32) int {
	if len(parts) == 0 {
		return -1
	}
	index := sort.Search(len(parts), func(i int) bool {
		return parts[i].FarZ > z
	})
	if index == len(parts) {
		index = len(parts) - 1
	}
	return index
}

// Assign each extent to the partition containing its near face, updating the
// MaxFarZ and Count fields of the partitions. The partition index of each
// extent is returned.
func Assign(parts []Partition, extents []Extent) []int {
	out := make([]int, len(extents))
	for i, ext := range extents {
		index := Locate(parts, ext.NearZ)
		out[i] = index
		if index < 0 {
			continue
		}
		parts[index].Count++
		if ext.FarZ > parts[index].MaxFarZ {
			parts[index].MaxFarZ = ext.FarZ
		}
	}
	return out
}
