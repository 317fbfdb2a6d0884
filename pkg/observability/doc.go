/*
Package observability turns router lifecycle hooks into Prometheus metrics and audit logs.

Metrics and LoggingHooks both produce domain.LifecycleHooks; Chain merges several hook sets
so they can be passed to switchboard.WithLifecycleHooks together.
*/
package observability
