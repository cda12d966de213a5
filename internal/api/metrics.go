package api

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const outcomeSuccess = "success"

var operationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_operations_total",
		Help: "Total number of commerce API calls by operation and outcome",
	},
	[]string{"operation", "outcome"},
)

func init() {
	prometheus.MustRegister(operationsTotal)
}

func recordOutcome(operation string, err error) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = strings.ToLower(string(apperrors.KindOf(err)))
	}
	operationsTotal.WithLabelValues(operation, outcome).Inc()
}
