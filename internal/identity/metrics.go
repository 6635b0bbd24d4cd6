// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package identity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for identity operations.
var (
	// registrationsTotal counts completed registrations by status.
	registrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driftline_registrations_total",
		Help: "Total number of registration attempts by status",
	}, []string{"status"})

	// loginsTotal counts login attempts by status.
	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driftline_logins_total",
		Help: "Total number of login attempts by status",
	}, []string{"status"})

	// sessionsIssuedTotal counts session ids allocated across registration
	// and login.
	sessionsIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "driftline_sessions_issued_total",
		Help: "Total number of session ids allocated",
	})

	// resetRequestsTotal counts password reset requests. There is no status
	// label: the reset flow deliberately does not distinguish outcomes.
	resetRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "driftline_reset_requests_total",
		Help: "Total number of password reset requests received",
	})

	// resetRedeemsTotal counts reset redemptions by status.
	resetRedeemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driftline_reset_redeems_total",
		Help: "Total number of password reset redemptions by status",
	}, []string{"status"})
)

const (
	metricStatusOK    = "ok"
	metricStatusError = "error"
)

func metricStatus(err error) string {
	if err != nil {
		return metricStatusError
	}
	return metricStatusOK
}
