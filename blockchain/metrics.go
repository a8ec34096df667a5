// Copyright (c) 2018 The Monkey developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusCheckpointRejections *prometheus.CounterVec

	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusCheckpointRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "monkeyd",
			Name:      "checkpoint_rejections_total",
			Help:      "Number of blocks rejected by a checkpoint rule",
		},
		[]string{"rule"},
	)
}
