package observability

import "time"

// NopMetrics discards every measurement. Used in tests and when metrics are disabled.
type NopMetrics struct{}

func (NopMetrics) IncrementFeedFetch(feed, outcome string)                           {}
func (NopMetrics) RecordRefreshLatency(duration time.Duration)                       {}
func (NopMetrics) IncrementDispatch(action, outcome string)                          {}
func (NopMetrics) IncrementReconcile(action, result string)                          {}
func (NopMetrics) SetPending(count int)                                              {}
func (NopMetrics) SetDiscrepancies(count int)                                        {}
func (NopMetrics) IncrementNotification(kind, outcome string)                        {}
func (NopMetrics) IncrementRequests(route, method, status string)                    {}
func (NopMetrics) RecordRequestLatency(route, method string, duration time.Duration) {}
