// Copyright 2022 Molecula Corp. All rights reserved.
package compiler

import "github.com/prometheus/client_golang/prometheus"

const (
	MetricExpressionsCompiled = "expressions_compiled_total"
	MetricCompileErrors       = "compile_errors_total"
	MetricProjectionErrors    = "projection_errors_total"
)

var CounterExpressionsCompiled = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "streamsql",
		Subsystem: "compiler",
		Name:      MetricExpressionsCompiled,
		Help:      "Number of expression trees compiled into evaluators.",
	},
)

var CounterCompileErrors = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "streamsql",
		Subsystem: "compiler",
		Name:      MetricCompileErrors,
		Help:      "Number of expression trees rejected at compile time, by error code.",
	},
	[]string{
		"code",
	},
)

var CounterProjectionErrors = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "streamsql",
		Subsystem: "compiler",
		Name:      MetricProjectionErrors,
		Help:      "Number of rows whose filter or select list failed to evaluate.",
	},
)

func init() {
	prometheus.MustRegister(CounterExpressionsCompiled)
	prometheus.MustRegister(CounterCompileErrors)
	prometheus.MustRegister(CounterProjectionErrors)
}
