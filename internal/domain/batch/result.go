// Package batch holds per-item outcomes for operations that normalize many
// loosely-typed inputs at once. One malformed item never fails the batch.
package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of normalizing one item in a batch. Items are
// addressed by their position in the input; key carries the citation key the
// item resolved to, empty when normalization failed.
type Result struct {
	index  int
	key    string
	status ItemStatus
	err    error
}

// NewOK creates a successful batch result.
func NewOK(index int, key string) Result {
	return Result{index: index, key: key, status: StatusOK}
}

// NewError creates a failed batch result.
func NewError(index int, err error) Result {
	return Result{index: index, status: StatusError, err: err}
}

// Index returns the item position in the input batch.
func (r Result) Index() int { return r.index }

// Key returns the citation key the item resolved to, if any.
func (r Result) Key() string { return r.key }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }
