package metadata

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/arenakit/fixedpool/memutils"
	cerrors "github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/google/btree"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

const freeIndexDegree = 8

// FreeListBlockMetadata is a BlockMetadata implementation that keeps an explicit list of free regions and
// an explicit set of allocated regions.
//
// Allocations are carved from the front of a chosen free region, which shrinks in place. Freed regions are
// merged eagerly with the free regions immediately before and after them, so the free list never holds two
// adjacent regions and a single merge on each side is always enough.
//
// The free regions are indexed twice: by (size, offset), which makes best-fit selection and the min/max
// free region queries logarithmic, and by offset, which is used to find the neighbours of a freed region.
// Allocated regions are keyed by their start offset.
type FreeListBlockMetadata struct {
	BlockMetadataBase

	sumFreeSize int
	freeBySize  *btree.BTreeG[Region]
	freeByOff   *btree.BTreeG[Region]
	allocated   *swiss.Map[int, Region]
}

var _ BlockMetadata = &FreeListBlockMetadata{}

func NewFreeListBlockMetadata() *FreeListBlockMetadata {
	return &FreeListBlockMetadata{}
}

func (m *FreeListBlockMetadata) Init(size int) {
	if size < 0 {
		panic(fmt.Sprintf("invalid block size: %d", size))
	}

	m.BlockMetadataBase.Init(size)
	m.freeBySize = btree.NewG[Region](freeIndexDegree, lessBySize)
	m.freeByOff = btree.NewG[Region](freeIndexDegree, lessByOffset)
	m.allocated = swiss.NewMap[int, Region](42)
	m.sumFreeSize = 0

	m.insertFreeRegion(Region{Offset: 0, Size: size})
}

func (m *FreeListBlockMetadata) insertFreeRegion(region Region) {
	if region.IsEmpty() {
		return
	}

	m.freeBySize.ReplaceOrInsert(region)
	m.freeByOff.ReplaceOrInsert(region)
	m.sumFreeSize += region.Size
}

func (m *FreeListBlockMetadata) removeFreeRegion(region Region) {
	_, foundSize := m.freeBySize.Delete(region)
	_, foundOff := m.freeByOff.Delete(region)
	if !foundSize || !foundOff {
		panic(fmt.Sprintf("free region %s was not present in the free list", region))
	}

	m.sumFreeSize -= region.Size
}

// resizeFreeRegion replaces a free region with a different region covering part of the same bytes
// or extending it, keeping both indexes in sync.
func (m *FreeListBlockMetadata) resizeFreeRegion(old Region, updated Region) {
	m.removeFreeRegion(old)
	m.insertFreeRegion(updated)
}

func (m *FreeListBlockMetadata) AllocationCount() int {
	if m.allocated == nil {
		return 0
	}
	return m.allocated.Count()
}

func (m *FreeListBlockMetadata) FreeRegionsCount() int {
	if m.freeByOff == nil {
		return 0
	}
	return m.freeByOff.Len()
}

func (m *FreeListBlockMetadata) SumFreeSize() int {
	return m.sumFreeSize
}

func (m *FreeListBlockMetadata) SumAllocatedSize() int {
	return m.size - m.sumFreeSize
}

func (m *FreeListBlockMetadata) MaxFreeRegionSize() int {
	if m.freeBySize == nil {
		return 0
	}

	largest, ok := m.freeBySize.Max()
	if !ok {
		return 0
	}
	return largest.Size
}

func (m *FreeListBlockMetadata) MinFreeRegionSize() int {
	if m.freeBySize == nil {
		return 0
	}

	smallest, ok := m.freeBySize.Min()
	if !ok {
		return 0
	}
	return smallest.Size
}

func (m *FreeListBlockMetadata) IsEmpty() bool {
	return m.AllocationCount() == 0
}

func (m *FreeListBlockMetadata) Validate() error {
	if m.freeBySize == nil || m.freeByOff == nil || m.allocated == nil {
		return errors.New("metadata has not been initialized")
	}

	if m.sumFreeSize > m.size {
		return errors.New("invalid metadata free size")
	}

	if m.freeBySize.Len() != m.freeByOff.Len() {
		return errors.Errorf("the size index holds %d free regions but the offset index holds %d", m.freeBySize.Len(), m.freeByOff.Len())
	}

	var indexErr error
	m.freeByOff.Ascend(func(region Region) bool {
		if !m.freeBySize.Has(region) {
			indexErr = errors.Errorf("free region %s is in the offset index but not the size index", region)
			return false
		}
		return true
	})
	if indexErr != nil {
		return indexErr
	}

	nextOffset := 0
	var calculatedFreeSize, allocCount int
	var prevFree bool

	err := m.VisitAllRegions(func(region Region, free bool) error {
		if region.IsEmpty() {
			return errors.Errorf("empty region stored at offset %d", region.Offset)
		}
		if region.Offset != nextOffset {
			return errors.Errorf("region at offset %d does not begin at the previous region's end offset %d", region.Offset, nextOffset)
		}
		if free && prevFree {
			return errors.Errorf("free region at offset %d is adjacent to another free region and should have been merged", region.Offset)
		}

		if free {
			calculatedFreeSize += region.Size
		} else {
			allocCount++
		}

		prevFree = free
		nextOffset = region.End()
		return nil
	})
	if err != nil {
		return err
	}

	if nextOffset != m.size {
		return errors.Errorf("the full size of the metadata is %d, but the regions only added up to %d", m.size, nextOffset)
	}

	if calculatedFreeSize != m.sumFreeSize {
		return errors.Errorf("the free size of the metadata is %d, but the free regions only added up to %d", m.sumFreeSize, calculatedFreeSize)
	}

	if allocCount != m.allocated.Count() {
		return errors.Errorf("the allocation count of the metadata is %d, but the walk only found %d allocations", m.allocated.Count(), allocCount)
	}

	return nil
}

func (m *FreeListBlockMetadata) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	stats.PoolCount++
	stats.PoolBytes += m.size

	_ = m.VisitAllRegions(func(region Region, free bool) error {
		if free {
			stats.AddFreeRegion(region.Size)
		} else {
			stats.AddAllocation(region.Size)
		}
		return nil
	})
}

func (m *FreeListBlockMetadata) AddStatistics(stats *memutils.Statistics) {
	stats.PoolCount++
	stats.PoolBytes += m.size
	stats.AllocationCount += m.AllocationCount()
	stats.AllocationBytes += m.SumAllocatedSize()
}

func (m *FreeListBlockMetadata) CreateAllocationRequest(allocSize int, strategy AllocationStrategy) (bool, AllocationRequest, error) {
	var allocRequest AllocationRequest

	if allocSize < 1 {
		return false, allocRequest, cerrors.Wrapf(memutils.ErrInvalidSize, "invalid allocSize: %d", allocSize)
	}

	allocSize += memutils.DebugMargin

	// Is the block big enough?
	if m.FreeRegionsCount() == 0 || allocSize > m.size || allocSize > m.sumFreeSize {
		return false, allocRequest, nil
	}

	memutils.DebugValidate(m)

	var source Region
	var found bool

	if strategy&AllocationStrategyMinOffset != 0 {
		m.freeByOff.Ascend(func(region Region) bool {
			if region.Size >= allocSize {
				source = region
				found = true
				return false
			}
			return true
		})
	} else {
		// Smallest region that fits, lowest offset among equals
		pivot := Region{Offset: math.MinInt, Size: allocSize}
		m.freeBySize.AscendGreaterOrEqual(pivot, func(region Region) bool {
			source = region
			found = true
			return false
		})
	}

	if !found {
		return false, allocRequest, nil
	}

	allocRequest.Type = AllocationRequestFreeList
	allocRequest.Strategy = strategy
	allocRequest.Source = source
	allocRequest.Item = Region{Offset: source.Offset, Size: allocSize}

	return true, allocRequest, nil
}

func (m *FreeListBlockMetadata) Alloc(req AllocationRequest) error {
	if req.Type != AllocationRequestFreeList {
		return errors.New("allocation request was received by an incompatible metadata")
	}

	current, ok := m.freeByOff.Get(req.Source)
	if !ok || current != req.Source {
		return errors.Errorf("allocation request's source region %s is no longer free", req.Source)
	}
	if req.Item.Offset != current.Offset || req.Item.IsEmpty() {
		return errors.Errorf("allocation request's region %s does not begin its source region %s", req.Item, current)
	}
	if current.Size < req.Item.Size {
		return errors.Errorf("allocation request's source region %s is too small for %d bytes", current, req.Item.Size)
	}

	m.resizeFreeRegion(current, Region{
		Offset: current.Offset + req.Item.Size,
		Size:   current.Size - req.Item.Size,
	})
	m.allocated.Put(req.Item.Offset, req.Item)

	memutils.DebugValidate(m)
	return nil
}

func (m *FreeListBlockMetadata) Free(offset int) error {
	if m.allocated == nil {
		return cerrors.Wrapf(memutils.ErrNotAllocated, "offset %d", offset)
	}

	freed, ok := m.allocated.Get(offset)
	if !ok {
		return cerrors.Wrapf(memutils.ErrNotAllocated, "offset %d", offset)
	}

	var prev Region
	var prevFound bool
	m.freeByOff.DescendLessOrEqual(Region{Offset: freed.Offset}, func(region Region) bool {
		prev = region
		prevFound = true
		return false
	})
	prevFound = prevFound && prev.Precedes(freed)

	next, nextFound := m.freeByOff.Get(Region{Offset: freed.End()})

	switch {
	case prevFound && nextFound:
		m.removeFreeRegion(next)
		m.resizeFreeRegion(prev, Region{Offset: prev.Offset, Size: prev.Size + freed.Size + next.Size})
	case prevFound:
		m.resizeFreeRegion(prev, Region{Offset: prev.Offset, Size: prev.Size + freed.Size})
	case nextFound:
		m.removeFreeRegion(next)
		m.insertFreeRegion(Region{Offset: freed.Offset, Size: freed.Size + next.Size})
	default:
		m.insertFreeRegion(freed)
	}

	m.allocated.Delete(offset)

	memutils.DebugValidate(m)
	return nil
}

func (m *FreeListBlockMetadata) AllocationAt(offset int) (Region, bool) {
	if m.allocated == nil {
		return Region{}, false
	}
	return m.allocated.Get(offset)
}

func (m *FreeListBlockMetadata) allocationsByOffset() []Region {
	if m.allocated == nil {
		return nil
	}

	allocs := make([]Region, 0, m.allocated.Count())
	m.allocated.Iter(func(_ int, region Region) bool {
		allocs = append(allocs, region)
		return false
	})
	slices.SortFunc(allocs, func(a, b Region) int {
		return a.Offset - b.Offset
	})

	return allocs
}

func (m *FreeListBlockMetadata) VisitAllRegions(handleRegion func(region Region, free bool) error) error {
	if m.freeByOff == nil {
		return nil
	}

	allocs := m.allocationsByOffset()
	allocIndex := 0

	var err error
	m.freeByOff.Ascend(func(free Region) bool {
		for allocIndex < len(allocs) && allocs[allocIndex].Offset < free.Offset {
			err = handleRegion(allocs[allocIndex], false)
			if err != nil {
				return false
			}
			allocIndex++
		}

		err = handleRegion(free, true)
		return err == nil
	})
	if err != nil {
		return err
	}

	for ; allocIndex < len(allocs); allocIndex++ {
		err = handleRegion(allocs[allocIndex], false)
		if err != nil {
			return err
		}
	}

	return nil
}

func (m *FreeListBlockMetadata) Clear() {
	m.Init(m.size)
}

func (m *FreeListBlockMetadata) BlockJsonData(json *jwriter.ObjectState) {
	m.BlockMetadataBase.BlockJsonData(json, m.SumFreeSize(), m.AllocationCount(), m.FreeRegionsCount())
	json.Name("LargestUnusedRange").Int(m.MaxFreeRegionSize())
	json.Name("SmallestUnusedRange").Int(m.MinFreeRegionSize())
}

func (m *FreeListBlockMetadata) CheckCorruption(blockData unsafe.Pointer) error {
	for _, region := range m.allocationsByOffset() {
		if !memutils.GuardIntact(blockData, region.End()-memutils.DebugMargin) {
			return cerrors.Wrapf(memutils.ErrCorruption, "allocation at offset %d", region.Offset)
		}
	}

	return nil
}
