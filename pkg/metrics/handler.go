package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the standard Prometheus scrape handler, for a CLI caller
// that wants to expose this registry's metrics on a "/metrics" endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
