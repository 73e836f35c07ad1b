// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package serde

import "github.com/prometheus/client_golang/prometheus"

const (
	MetricRecordsDeserialized   = "records_deserialized_total"
	MetricDeserializationErrors = "deserialization_errors_total"
	MetricNullRecords           = "null_records_total"
)

var CounterRecordsDeserialized = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "streamsql",
		Subsystem: "serde",
		Name:      MetricRecordsDeserialized,
		Help:      "Number of records decoded into rows.",
	},
	[]string{
		"format",
	},
)

var CounterDeserializationErrors = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "streamsql",
		Subsystem: "serde",
		Name:      MetricDeserializationErrors,
		Help:      "Number of records which failed to decode.",
	},
	[]string{
		"format",
	},
)

var CounterNullRecords = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "streamsql",
		Subsystem: "serde",
		Name:      MetricNullRecords,
		Help:      "Number of absent or null payloads, which decode to no row.",
	},
	[]string{
		"format",
	},
)

func init() {
	prometheus.MustRegister(CounterRecordsDeserialized)
	prometheus.MustRegister(CounterDeserializationErrors)
	prometheus.MustRegister(CounterNullRecords)
}
