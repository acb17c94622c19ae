package rect

import "fmt"

// InstanceFloats is the number of float32 values per rectangle instance:
// x, y, width, height (normalized to the canvas) then r, g, b, a.
const InstanceFloats = 8

// InstanceBytes is the byte size of one instance.
const InstanceBytes = InstanceFloats * 4

// Batch is a growable sequence of rectangle instances plus the number of
// instances valid for the current frame. Data past Count is left over from
// an earlier, larger frame and must not be drawn.
type Batch struct {
	data  []float32
	count int
}

// NewBatch returns a batch with room for capacity instances.
func NewBatch(capacity int) *Batch {
	return &Batch{data: make([]float32, capacity*InstanceFloats)}
}

// Capacity returns the number of instances the batch can hold.
func (b *Batch) Capacity() int { return len(b.data) / InstanceFloats }

// Count returns the number of valid instances.
func (b *Batch) Count() int { return b.count }

// EnsureCapacity grows the batch so it holds at least minInstances. Growth
// happens in steps of growStep instances (a whole grid's worth) so that
// content churn does not reallocate every frame. Capacity never shrinks and
// data already written is preserved.
func (b *Batch) EnsureCapacity(minInstances, growStep int) {
	have := b.Capacity()
	if have >= minInstances {
		return
	}
	next := have + growStep
	if next < minInstances {
		next = minInstances
	}
	grown := make([]float32, next*InstanceFloats)
	copy(grown, b.data)
	b.data = grown
}

// Write stores one instance at slot. Writing past Capacity is a programming
// error and panics; callers size the batch with EnsureCapacity first.
func (b *Batch) Write(slot int, x, y, w, h float32, color [4]float32) {
	if slot < 0 || slot >= b.Capacity() {
		panic(fmt.Sprintf("rect: instance slot %d out of range [0,%d)", slot, b.Capacity()))
	}
	d := b.data[slot*InstanceFloats : (slot+1)*InstanceFloats : (slot+1)*InstanceFloats]
	d[0], d[1], d[2], d[3] = x, y, w, h
	d[4], d[5], d[6], d[7] = color[0], color[1], color[2], color[3]
}

// SetCount sets the number of valid instances. It panics if n exceeds
// Capacity.
func (b *Batch) SetCount(n int) {
	if n < 0 || n > b.Capacity() {
		panic(fmt.Sprintf("rect: count %d out of range [0,%d]", n, b.Capacity()))
	}
	b.count = n
}

// Reset marks the batch empty without releasing storage.
func (b *Batch) Reset() { b.count = 0 }

// Instances returns the valid instance data, Count*InstanceFloats values.
// The slice aliases the batch and is overwritten by the next build.
func (b *Batch) Instances() []float32 { return b.data[:b.count*InstanceFloats] }

// Instance returns a copy of instance i.
func (b *Batch) Instance(i int) [InstanceFloats]float32 {
	var out [InstanceFloats]float32
	copy(out[:], b.data[i*InstanceFloats:(i+1)*InstanceFloats])
	return out
}
