// Copyright (c) 2018 The Monkey developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package spork

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusSporkMessages *prometheus.CounterVec
	prometheusSporkUpdates  prometheus.Counter

	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusSporkMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "monkeyd",
			Name:      "spork_messages_total",
			Help:      "Number of spork messages processed by result",
		},
		[]string{"result"},
	)
	prometheusSporkUpdates = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "monkeyd",
			Name:      "spork_local_updates_total",
			Help:      "Number of spork updates signed by this node",
		},
	)
}
