package query

// Phase is the lifecycle position of a query.
type Phase int

const (
	Idle Phase = iota
	Loading
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a snapshot of one query.
//
// While Loading, Value and HasValue still hold the last Ready result so a
// renderer can keep showing it next to a loader. Failed clears them. Err is
// only set when Failed.
type State[T any] struct {
	Phase      Phase
	Generation uint64
	Value      T
	HasValue   bool
	Err        error
}

func (s State[T]) IsLoading() bool { return s.Phase == Loading }
func (s State[T]) Failed() bool    { return s.Phase == Failed }

// Settled reports whether the current generation has been applied.
func (s State[T]) Settled() bool { return s.Phase == Ready || s.Phase == Failed }

// Facets is the untyped view consumed by render bindings.
type Facets struct {
	Generation uint64
	Loading    bool
	Failed     bool
	// Value is nil when there is nothing to show.
	Value any
}

func (s State[T]) Facets() Facets {
	f := Facets{
		Generation: s.Generation,
		Loading:    s.IsLoading(),
		Failed:     s.Failed(),
	}
	if s.HasValue {
		f.Value = s.Value
	}
	return f
}
