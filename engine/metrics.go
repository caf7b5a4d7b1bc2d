/*
 * Copyright 2024 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	manifestUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "predylogic",
			Subsystem: "engine",
			Name:      "manifest_updates_total",
			Help:      "Number of UpdateManifests calls, by outcome.",
		},
		[]string{"status"},
	)

	manifestUpdateDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "predylogic",
			Subsystem: "engine",
			Name:      "manifest_update_duration_seconds",
			Help:      "Time spent compiling and publishing an UpdateManifests call.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	handleInvokesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "predylogic",
			Subsystem: "engine",
			Name:      "handle_invokes_total",
			Help:      "Number of PredicateHandle.Invoke calls, by registry, rule and outcome.",
		},
		[]string{"registry", "rule", "status"},
	)
)

func init() {
	prometheus.MustRegister(manifestUpdatesTotal, manifestUpdateDuration, handleInvokesTotal)
}
