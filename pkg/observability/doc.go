/*
Package observability provides tools for monitoring schema validations.

It includes lifecycle hooks that fire around every registry validation and a
Prometheus collector set that can be plugged into those hooks:

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	reg := registry.New(store, registry.WithHooks(metrics.Hooks()))
*/
package observability
