package breakpoint

// Candidates holds an optional value producer per category. Nil means absent.
type Candidates[T any] struct {
	Phone   func() T
	Tablet  func() T
	Large   func() T
	XLarge  func() T
	XXLarge func() T
}

// Value wraps a constant as a producer.
func Value[T any](v T) func() T {
	return func() T { return v }
}

// Get returns the producer for c, nil when absent.
func (c Candidates[T]) Get(cat Category) func() T {
	switch cat {
	case Phone:
		return c.Phone
	case Tablet:
		return c.Tablet
	case Large:
		return c.Large
	case XLarge:
		return c.XLarge
	case XXLarge:
		return c.XXLarge
	}
	return nil
}

// Set returns a copy of c with the producer for cat replaced.
func (c Candidates[T]) Set(cat Category, fn func() T) Candidates[T] {
	switch cat {
	case Phone:
		c.Phone = fn
	case Tablet:
		c.Tablet = fn
	case Large:
		c.Large = fn
	case XLarge:
		c.XLarge = fn
	case XXLarge:
		c.XXLarge = fn
	}
	return c
}

// Empty reports whether no candidate is present.
func (c Candidates[T]) Empty() bool {
	for _, cat := range Categories {
		if c.Get(cat) != nil {
			return false
		}
	}
	return true
}

// Resolve picks the value for width against the Full table.
func Resolve[T any](width float64, c Candidates[T]) (T, error) {
	return ResolveWith(Full, width, c)
}

// ResolveWith picks the value for width in two phases:
//
//  1. starting at the category width classifies to, walk down to Phone and
//     take the first present candidate;
//  2. otherwise take the first present candidate in ascending order
//     Phone, Tablet, Large, XLarge, XXLarge.
//
// A wider category therefore inherits the nearest smaller value, and a
// narrower one with nothing below it borrows the smallest value supplied.
func ResolveWith[T any](t *Table, width float64, c Candidates[T]) (T, error) {
	var zero T
	if c.Empty() {
		return zero, &ConfigurationError{Op: "resolve", Reason: "at least one category value must be provided"}
	}
	if t == nil {
		t = Full
	}
	matched := t.Classify(width)
	for cat := matched; cat >= Phone; cat-- {
		if fn := c.Get(cat); fn != nil {
			return fn(), nil
		}
	}
	for _, cat := range Categories {
		if fn := c.Get(cat); fn != nil {
			return fn(), nil
		}
	}
	return zero, nil
}
