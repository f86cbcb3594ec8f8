/*
Package monitoring provides Prometheus metrics for the presentation host.

# Overview

Metrics live on a private registry so several hosts (and tests) can coexist
in one process. The collector tracks HTTP traffic, UI lifecycle transitions,
frame loop timing, catalog reloads and stream connections.

Metrics satisfies both ui.Recorder and frame.Recorder, so the same value is
handed to the manager and the loop.

# Usage

	metrics := monitoring.NewMetrics()
	manager := ui.NewManager(reg, logger).WithRecorder(metrics)
	loop := frame.NewLoop(manager, sched, logger, 60).WithRecorder(metrics)

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
