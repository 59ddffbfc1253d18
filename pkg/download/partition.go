package download

import "fmt"

// Partition is a contiguous byte range of the destination assigned to one range request.
type Partition struct {
	Start  int64
	Length int64
}

// End returns the inclusive offset of the last byte.
func (p Partition) End() int64 {
	return p.Start + p.Length - 1
}

// RangeHeader returns the value for the Range request header.
func (p Partition) RangeHeader() string {
	return fmt.Sprintf("bytes=%d-%d", p.Start, p.End())
}

// Partitions splits [0, size) into at most workers contiguous ranges ordered by offset. Every
// range has length size/workers except the last, which also takes the remainder. When size is
// smaller than workers one single-byte range per byte is returned, and size zero yields none.
func Partitions(size int64, workers int) []Partition {
	if size <= 0 {
		return nil
	}
	n := int64(max(workers, 1))
	if n > size {
		n = size
	}
	partSize := size / n
	parts := make([]Partition, n)
	for i := int64(0); i < n; i++ {
		parts[i] = Partition{Start: i * partSize, Length: partSize}
	}
	parts[n-1].Length = size - parts[n-1].Start
	return parts
}
