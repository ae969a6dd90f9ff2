/*
Package observability turns workflow lifecycle events into Prometheus metrics and
structured log records.

Both are exposed as domain.LifecycleHooks and can be combined with domain.MergeHooks.
*/
package observability
