package metrics

import "sync/atomic"

type Metrics struct {
	booksCreated           int64
	recommendationsServed  int64
	upstreamFailures       int64
	activeEventSubscribers int64
}

var global = &Metrics{}

func IncrementBooksCreated() {
	atomic.AddInt64(&global.booksCreated, 1)
}

func IncrementRecommendationsServed() {
	atomic.AddInt64(&global.recommendationsServed, 1)
}

func IncrementUpstreamFailures() {
	atomic.AddInt64(&global.upstreamFailures, 1)
}

func SetActiveEventSubscribers(count int64) {
	atomic.StoreInt64(&global.activeEventSubscribers, count)
}

func GetBooksCreated() int64 {
	return atomic.LoadInt64(&global.booksCreated)
}

func GetRecommendationsServed() int64 {
	return atomic.LoadInt64(&global.recommendationsServed)
}

func GetUpstreamFailures() int64 {
	return atomic.LoadInt64(&global.upstreamFailures)
}

func GetActiveEventSubscribers() int64 {
	return atomic.LoadInt64(&global.activeEventSubscribers)
}

func Reset() {
	atomic.StoreInt64(&global.booksCreated, 0)
	atomic.StoreInt64(&global.recommendationsServed, 0)
	atomic.StoreInt64(&global.upstreamFailures, 0)
	atomic.StoreInt64(&global.activeEventSubscribers, 0)
}
