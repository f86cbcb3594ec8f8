// Package server wires the UI host together: config, logging, metrics,
// tracing, the template registry and catalog, the UI manager and its frame
// loop, the control-plane API and the event stream.
//
//	srv, err := server.NewServer(cfg, logger)
//	if err != nil { ... }
//	err = srv.Run(ctx) // blocks until ctx is done
//
// Responses are gzip-compressed except on the stream endpoint.
package server
