// Package metrics records build metrics.
//
// Components receive a Recorder and default to NoopRecorder, so instrumented
// code never checks for nil. The PrometheusRecorder keeps its series in a
// registry that can be written as a Prometheus textfile after a build:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	svc := build.NewService().WithRecorder(rec)
//	...
//	err := metrics.WriteTextfile("build.prom", reg)
package metrics
