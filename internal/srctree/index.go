package srctree

// Origin is the file and 1-based line a generated line came from.
type Origin struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// Index maps 1-based generated line numbers to their origins.
type Index struct {
	origins []Origin
}

// NewIndex builds an index from origins ordered by generated line.
func NewIndex(origins []Origin) *Index {
	return &Index{origins: append([]Origin(nil), origins...)}
}

// Search returns the origin of generated line n. It reports false for n
// outside [1, Len()].
func (x *Index) Search(n int) (Origin, bool) {
	if x == nil || n < 1 || n > len(x.origins) {
		return Origin{}, false
	}
	return x.origins[n-1], true
}

// Len returns the number of generated lines covered.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.origins)
}

// Origins returns a copy of all entries, entry i describing line i+1.
func (x *Index) Origins() []Origin {
	if x == nil {
		return []Origin{}
	}
	return append([]Origin{}, x.origins...)
}
