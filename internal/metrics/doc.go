// Package metrics provides the Prometheus collectors for the debate
// engine: turn throughput, verification volume, lie detections, phase
// durations, and external collaborator latency. Collectors register
// through promauto against a caller-supplied registerer, so tests can
// use an isolated registry.
package metrics
