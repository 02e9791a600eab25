package contracts

// Transformer is the only thing callers depend on. Transform reports whether
// the run completed; per-file failures do not make it fail.
type Transformer interface {
	Transform() (bool, error)
}
