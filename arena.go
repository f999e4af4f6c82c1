// Arena allocator backing all intermediate compiler data.
// Fast bump allocation; memory is released in bulk at end of compile.
package main

import "math"

const arenaAlignment = 16

// Allocator is the lower-level allocator an Arena draws blocks from.
// The default is backed by Go's heap; tests inject counting or failing
// allocators.
type Allocator interface {
	Malloc(size int) []byte
	Free(buf []byte)
}

type heapAllocator struct{}

func (heapAllocator) Malloc(size int) []byte { return make([]byte, size) }
func (heapAllocator) Free(buf []byte)        {}

// DefaultAllocator allocates from the Go heap.
var DefaultAllocator Allocator = heapAllocator{}

type arenaBlock struct {
	size     int // bump offset
	capacity int
	data     []byte
	next     *arenaBlock
}

// Arena is a growable list of blocks, each with a bump pointer.
// Alloc rounds the bump up to a 16-byte boundary; Reset rewinds every
// block without returning memory to the allocator so the arena can be
// reused across compiles.
type Arena struct {
	blocks         *arenaBlock
	currentBlock   *arenaBlock
	lastBlock      *arenaBlock
	allocator      Allocator
	firstBlockSize int
}

// NewArena creates an arena whose first block will hold firstBlockSize
// bytes. A nil allocator selects DefaultAllocator.
func NewArena(firstBlockSize int, allocator Allocator) *Arena {
	if allocator == nil {
		allocator = DefaultAllocator
	}
	return &Arena{
		allocator:      allocator,
		firstBlockSize: firstBlockSize,
	}
}

// Deinit returns every block to the backing allocator.
func (a *Arena) Deinit() {
	for curr := a.blocks; curr != nil; {
		next := curr.next
		a.allocator.Free(curr.data)
		curr = next
	}
	a.blocks = nil
	a.currentBlock = nil
	a.lastBlock = nil
}

// Reset rewinds all bump pointers without freeing blocks.
func (a *Arena) Reset() {
	for curr := a.blocks; curr != nil; curr = curr.next {
		curr.size = 0
	}
	a.currentBlock = a.blocks
}

func alignmentLoss(bytesAllocated, alignment int) int {
	offset := bytesAllocated & (alignment - 1)
	if offset == 0 {
		return 0
	}
	return alignment - offset
}

func (blk *arenaBlock) bytesLeft() int {
	inc := alignmentLoss(blk.size, arenaAlignment)
	return blk.capacity - (blk.size + inc)
}

func (a *Arena) allocBlock(requestedSize int) {
	var allocatedSize int
	if a.blocks == nil {
		allocatedSize = a.firstBlockSize
	} else {
		allocatedSize = a.lastBlock.capacity
	}

	if allocatedSize < 1 {
		allocatedSize = 1
	}
	for allocatedSize < requestedSize {
		allocatedSize *= 2
	}
	if allocatedSize > math.MaxUint32 {
		allocatedSize = math.MaxUint32
	}

	blk := &arenaBlock{
		capacity: allocatedSize,
		data:     a.allocator.Malloc(allocatedSize),
	}

	if a.blocks == nil {
		a.blocks = blk
	} else {
		a.lastBlock.next = blk
	}
	a.lastBlock = blk
	a.currentBlock = blk
}

// Alloc returns a zeroed slot of the given size, aligned to 16 bytes.
// Alloc(0) returns nil.
func (a *Arena) Alloc(size int) []byte {
	if size == 0 {
		return nil
	}

	if a.blocks == nil {
		a.allocBlock(size)
	}

	for a.currentBlock.bytesLeft() < size {
		a.currentBlock = a.currentBlock.next
		if a.currentBlock == nil {
			a.allocBlock(size)
			break
		}
	}

	blk := a.currentBlock
	inc := alignmentLoss(blk.size, arenaAlignment)
	out := blk.data[blk.size+inc : blk.size+inc+size : blk.size+inc+size]
	blk.size += size + inc
	return out
}

// Realloc grows an allocation from oldSize to size. When buf is the
// last allocation in the current block and the block has room, it is
// extended in place; otherwise a fresh slot is allocated and the old
// contents copied.
func (a *Arena) Realloc(buf []byte, oldSize, size int) []byte {
	if oldSize >= size {
		return buf
	}

	if buf == nil || a.blocks == nil {
		return a.Alloc(size)
	}

	blk := a.currentBlock
	bytesLeft := blk.capacity - blk.size + oldSize
	if a.isLastAllocated(buf, oldSize) && bytesLeft >= size {
		blk.size -= oldSize
		return a.Alloc(size)
	}

	out := a.Alloc(size)
	copy(out, buf[:oldSize])
	return out
}

func (a *Arena) isLastAllocated(buf []byte, size int) bool {
	blk := a.currentBlock
	if blk == nil || blk.size < size {
		return false
	}
	prev := blk.data[blk.size-size : blk.size]
	return len(buf) > 0 && len(prev) > 0 && &prev[0] == &buf[0]
}

// CopyString interns s into the arena and returns the arena-owned copy.
func (a *Arena) CopyString(s string) string {
	if len(s) == 0 {
		return ""
	}
	buf := a.Alloc(len(s))
	copy(buf, s)
	return string(buf)
}
