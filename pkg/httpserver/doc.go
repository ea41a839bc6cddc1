// Package httpserver runs an http.Handler with configurable timeouts and
// graceful shutdown on context cancellation, SIGINT or SIGTERM.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// HealthCheckHandler serves liveness and readiness probes:
//
//	r.Get("/health/live", httpserver.HealthCheckHandler(log))
//	r.Get("/health/ready", httpserver.HealthCheckHandler(log,
//		httpserver.Check{Name: "postgres", Probe: pg.Healthcheck(pool)},
//	))
//
// Run wraps listener errors with ErrStart and Shutdown wraps shutdown errors
// with ErrShutdown.
package httpserver
