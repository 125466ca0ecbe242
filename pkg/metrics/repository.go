package metrics

import "time"

// RepositoryMetrics observes repository operations.
//
// Pass nil to the repository to disable collection; it substitutes the no-op
// implementation.
type RepositoryMetrics interface {
	// RecordOperation records a completed operation.
	//
	// Parameters:
	//   - operation: Operation name (e.g., "GetObject", "GetChildren")
	//   - duration: Time taken to complete the operation
	//   - err: Error if the operation failed, nil on success
	RecordOperation(operation string, duration time.Duration, err error)

	// RecordTypeRefresh records a rebuild of the type registry.
	RecordTypeRefresh(duration time.Duration, err error)

	// SetTypeCount reports the number of registered types.
	SetTypeCount(count int)
}

// NewNoopRepositoryMetrics returns a RepositoryMetrics that discards
// everything.
func NewNoopRepositoryMetrics() RepositoryMetrics {
	return noopRepositoryMetrics{}
}

type noopRepositoryMetrics struct{}

func (noopRepositoryMetrics) RecordOperation(string, time.Duration, error) {}
func (noopRepositoryMetrics) RecordTypeRefresh(time.Duration, error)       {}
func (noopRepositoryMetrics) SetTypeCount(int)                             {}

// HTTPMetrics observes the HTTP binding.
type HTTPMetrics interface {
	// RecordRequest records a served request.
	RecordRequest(route string, status int, duration time.Duration)

	// RecordRateLimited records a request rejected by the rate limiter.
	RecordRateLimited()
}

func NewNoopHTTPMetrics() HTTPMetrics {
	return noopHTTPMetrics{}
}

type noopHTTPMetrics struct{}

func (noopHTTPMetrics) RecordRequest(string, int, time.Duration) {}
func (noopHTTPMetrics) RecordRateLimited()                       {}
