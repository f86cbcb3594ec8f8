/*
Package tracing provides lightweight request tracing for the HTTP surface.

Each request gets a span. The trace ID is taken from the X-Trace-ID header
when the caller sends one (the uictl client always does) and minted as a
ULID otherwise. Both IDs are echoed in the response headers so operators
can correlate a CLI call with the host's log lines.

Finished spans are queued on a buffered channel and logged at debug level
by a collector goroutine; failed spans are logged at warn.

	tracer := tracing.New("uilayers", logger)
	defer tracer.Close()
	router.Use(tracing.HTTPMiddleware(tracer))
*/
package tracing
