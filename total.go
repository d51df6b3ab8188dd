package pagekit

import "sync"

// Counter computes the total number of rows of a dataset.
type Counter func() (int64, error)

// Total is the total number of rows behind a pagination result. It is either
// known upfront (KnownTotal) or computed on first access (LazyTotal). A nil
// *Total means the total was not computed and is unknown, which is distinct from
// a total of zero.
type Total struct {
	once    sync.Once
	counter Counter
	value   int64
	err     error
}

// KnownTotal returns a resolved total.
func KnownTotal(n int64) *Total {
	t := &Total{value: n}
	t.once.Do(func() {})

	return t
}

// LazyTotal returns a total evaluated by counter on the first Resolve call.
// The result, including an error, is cached for the lifetime of the Total.
// A nil counter yields an unknown total.
func LazyTotal(counter Counter) *Total {
	if counter == nil {
		return nil
	}

	return &Total{counter: counter}
}

// IsKnown returns true if the total is available, possibly after evaluation.
func (t *Total) IsKnown() bool {
	return t != nil
}

// Resolve returns the total. ok is false when the total is unknown. The counter
// of a lazy total runs at most once, concurrent first callers wait for it.
func (t *Total) Resolve() (total int64, ok bool, err error) {
	if t == nil {
		return 0, false, nil
	}

	t.once.Do(func() {
		t.value, t.err = t.counter()
		t.counter = nil
	})

	if t.err != nil {
		return 0, false, t.err
	}

	return t.value, true, nil
}
