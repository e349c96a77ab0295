package lang

// SymbolID uniquely identifies a Symbol within a single indexing run.
type SymbolID uint32

// FileID identifies a source file within the enclosing indexer's namespace.
type FileID uint32

// SymbolCounter mints monotonically increasing SymbolIDs for a single
// parse run. It is not safe for concurrent use: the caller owns exactly
// one counter per parser goroutine and must not share it across threads
// without external serialization (spec 5 "Shared resource policy").
type SymbolCounter struct {
	next SymbolID
}

// NewSymbolCounter creates a counter starting at 1; zero is reserved to
// mean "no symbol".
func NewSymbolCounter() *SymbolCounter {
	return &SymbolCounter{next: 1}
}

// Next mints and returns the next SymbolID.
func (c *SymbolCounter) Next() SymbolID {
	id := c.next
	c.next++
	return id
}

// Len reports how many IDs have been minted so far.
func (c *SymbolCounter) Len() int {
	return int(c.next - 1)
}
