// Package tracing integrates observability back-ends with the client to
// provide distributed tracing of workflow loads, submissions and queue polls.
// All instrumentation is kept in a separate package so that applications
// which do not require tracing can exclude it from their build.
package tracing
