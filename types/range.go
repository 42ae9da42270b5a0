package types

import "fmt"

// Partition is a disjoint, contiguous row window of a remote table assigned
// to one reader. Offset is the absolute starting row, Count the number of
// rows in the window.
type Partition struct {
	Index  int   `json:"index"`
	Offset int64 `json:"offset"`
	Count  int64 `json:"count"`
}

func (p Partition) String() string {
	return fmt.Sprintf("partition[%d] rows %d..%d", p.Index, p.Offset, p.Offset+p.Count)
}

// End returns the exclusive upper row bound of the window.
func (p Partition) End() int64 {
	return p.Offset + p.Count
}
