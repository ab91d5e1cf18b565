// Copyright (C) 2025-2026, CCD Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ccd-labs/ccdledger/utils/wrappers"
)

const metricsNamespace = "ccdledger"

type metrics struct {
	wrappers.Errs

	stages     prometheus.Counter
	signatures prometheus.Counter
	declines   prometheus.Counter
}

func newMetrics() *metrics {
	return &metrics{
		stages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "stages_sent",
			Help:      "Number of protocol stages sent to the device",
		}),
		signatures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "signatures",
			Help:      "Number of signatures produced",
		}),
		declines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "declines",
			Help:      "Number of signing requests declined by the user",
		}),
	}
}

func (m *metrics) register(reg prometheus.Registerer) {
	m.Add(
		reg.Register(m.stages),
		reg.Register(m.signatures),
		reg.Register(m.declines),
	)
}
