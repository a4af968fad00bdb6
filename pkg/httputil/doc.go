// Package httputil provides retry helpers for outgoing HTTP calls.
//
// [Retry] re-runs an operation with exponential backoff, but only when the
// failure was marked transient by wrapping it in [RetryableError]. Callers
// decide what counts as transient; [IsRetryableStatus] covers the usual
// HTTP cases (429 and 5xx).
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// Streaming requests are never retried: once fragments have been handed
// to a consumer the call cannot be replayed.
package httputil
