// Package resilience holds the fault tolerance used around outbound calls.
//
// Feed fetching is single-attempt: a failing publisher is reported once per
// aggregation call and never retried. The circuitbreaker subpackage keeps
// the service from repeatedly contacting hosts that keep failing:
//
//	cb := circuitbreaker.New(circuitbreaker.FeedHostConfig("elpais.com"))
//	body, err := circuitbreaker.Do(cb, func() ([]byte, error) {
//	    return fetch(ctx, feedURL)
//	})
//	if circuitbreaker.IsOpenStateError(err) {
//	    // host is cooling down
//	}
package resilience
