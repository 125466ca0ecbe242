package repository

import "iter"

// Limiter is a skip/take cursor over a sequence. It reads the source in a
// single forward pass and never looks more than one element ahead.
//
// A negative skip is treated as zero; a negative take means no limit.
// Call Stop when done unless the page was drained.
type Limiter[T any] struct {
	next func() (T, bool)
	stop func()

	skip      int
	remaining int
	skipped   bool
	done      bool

	peeked bool
	peek   T
}

// NewLimiter creates a cursor over seq.
func NewLimiter[T any](seq iter.Seq[T], skip, take int) *Limiter[T] {
	next, stop := iter.Pull(seq)
	if skip < 0 {
		skip = 0
	}
	if take < 0 {
		take = -1
	}
	return &Limiter[T]{next: next, stop: stop, skip: skip, remaining: take}
}

func (l *Limiter[T]) skipOnce() {
	if l.skipped {
		return
	}
	l.skipped = true
	for i := 0; i < l.skip; i++ {
		if _, ok := l.next(); !ok {
			l.finish()
			return
		}
	}
}

// fill makes sure one element is buffered, if the source has one.
func (l *Limiter[T]) fill() bool {
	l.skipOnce()
	if l.peeked {
		return true
	}
	if l.done {
		return false
	}
	v, ok := l.next()
	if !ok {
		l.finish()
		return false
	}
	l.peek, l.peeked = v, true
	return true
}

func (l *Limiter[T]) finish() {
	l.done = true
	l.stop()
}

// HasNext reports whether Next would return an element.
func (l *Limiter[T]) HasNext() bool {
	return l.remaining != 0 && l.fill()
}

// Next returns the next element of the page.
func (l *Limiter[T]) Next() (T, bool) {
	var zero T
	if !l.HasNext() {
		return zero, false
	}
	v := l.peek
	l.peek, l.peeked = zero, false
	if l.remaining > 0 {
		l.remaining--
	}
	return v, true
}

// HasMore reports whether the source holds elements past the end of the
// page. It is meaningful once Next has returned false.
func (l *Limiter[T]) HasMore() bool {
	if l.remaining != 0 {
		return false
	}
	return l.fill()
}

// Stop releases the source.
func (l *Limiter[T]) Stop() {
	if !l.done {
		l.finish()
	}
}

// Page collects one page of seq.
func Page[T any](seq iter.Seq[T], skip, take int) ([]T, bool) {
	l := NewLimiter(seq, skip, take)
	defer l.Stop()

	var items []T
	for v, ok := l.Next(); ok; v, ok = l.Next() {
		items = append(items, v)
	}
	return items, l.HasMore()
}

// pageBounds converts protocol paging arguments. maxItems <= 0 means the
// caller did not set a limit.
func pageBounds(maxItems, skipCount int64) (skip, take int) {
	skip = int(max(skipCount, 0))
	take = -1
	if maxItems > 0 {
		take = int(maxItems)
	}
	return skip, take
}
