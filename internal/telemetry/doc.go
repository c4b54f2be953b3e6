// Package telemetry wraps OpenTelemetry SDK setup for traces and
// metrics. When telemetry is disabled no exporters are created and the
// global providers stay noop.
package telemetry
