package channel_utils

// Collect drains values until the channel closes, then returns them with the
// first error reported on errCh. each may be nil. Producers must close both
// channels.
func Collect[T any](values <-chan T, errCh <-chan error, each func(T)) ([]T, error) {
	var collected []T
	for v := range values {
		if each != nil {
			each(v)
		}
		collected = append(collected, v)
	}
	var firstErr error
	for err := range errCh {
		if firstErr == nil {
			firstErr = err
		}
	}
	return collected, firstErr
}
