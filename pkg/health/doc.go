// Package health serves liveness and readiness probes.
//
// Readiness runs named checks concurrently under a shared deadline:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//		"source": svc.Healthcheck,
//		"redis":  redis.Healthcheck(client),
//	}, health.WithTimeout(2*time.Second)))
//
// Both handlers respond with JSON:
//
//	{"status":"unhealthy","checks":{"redis":{"status":"unhealthy","error":"..."},"source":{"status":"healthy"}}}
package health
