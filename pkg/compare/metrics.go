// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package compare

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsCompare holds Prometheus metrics for model calls.
type metricsCompare struct {
	once sync.Once

	calls       *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	fallbacks   *prometheus.CounterVec
	comparisons prometheus.Counter
}

var cmpMetrics metricsCompare

func (m *metricsCompare) init() {
	m.once.Do(func() {
		m.calls = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "llmcompare_model_calls_total",
			Help: "Model calls by provider, status and error type",
		}, []string{"provider", "status", "error_type"})

		buckets := []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60, 120}
		m.latency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "llmcompare_model_call_seconds",
			Help:    "Latency of model calls",
			Buckets: buckets,
		}, []string{"provider"})

		m.fallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "llmcompare_discovery_fallbacks_total",
			Help: "Times the static model list replaced live discovery",
		}, []string{"provider"})

		m.comparisons = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "llmcompare_comparisons_total",
			Help: "Comparisons served",
		})

		prometheus.MustRegister(m.calls, m.latency, m.fallbacks, m.comparisons)
	})
}

// record helpers
func recordCall(provider, status, errType string) {
	cmpMetrics.init()
	cmpMetrics.calls.WithLabelValues(provider, status, errType).Inc()
}

func observeLatency(provider string, d time.Duration) {
	cmpMetrics.init()
	cmpMetrics.latency.WithLabelValues(provider).Observe(d.Seconds())
}

func recordFallback(provider string) {
	cmpMetrics.init()
	cmpMetrics.fallbacks.WithLabelValues(provider).Inc()
}

func recordComparison() { cmpMetrics.init(); cmpMetrics.comparisons.Inc() }
