// Copyright (C) 2019-2025 Algorand, Inc.
// This file is part of go-griefing
//
// go-griefing is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-griefing is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-griefing.  If not, see <https://www.gnu.org/licenses/>.

package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Registry holds the collectors of one ledger. All methods are safe to call
// on a nil *Registry, which records nothing.
type Registry struct {
	reg *prometheus.Registry

	operations *prometheus.CounterVec
	duration   prometheus.Histogram
	events     *prometheus.CounterVec
	burned     *prometheus.CounterVec
	instances  *prometheus.CounterVec
}

// MakeRegistry creates a registry with all collectors registered.
func MakeRegistry() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}
	r.operations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      OperationsTotal.Name,
		Help:      OperationsTotal.Description,
	}, []string{"op", "outcome"})
	r.duration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      OperationDurationSeconds.Name,
		Help:      OperationDurationSeconds.Description,
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	})
	r.events = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      EventsTotal.Name,
		Help:      EventsTotal.Description,
	}, []string{"tag"})
	r.burned = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      BurnedTotal.Name,
		Help:      BurnedTotal.Description,
	}, []string{"asset"})
	r.instances = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      InstancesTotal.Name,
		Help:      InstancesTotal.Description,
	}, []string{"type"})
	r.reg.MustRegister(r.operations, r.duration, r.events, r.burned, r.instances)
	return r
}

// Gatherer exposes the underlying prometheus registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.reg
}

// Operation records the outcome and latency of an atomic operation.
// outcome is OutcomeOK or the kind of the error that aborted it.
func (r *Registry) Operation(op string, outcome string, started time.Time) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(op, outcome).Inc()
	r.duration.Observe(time.Since(started).Seconds())
}

// Event counts a published notification.
func (r *Registry) Event(tag string) {
	if r == nil {
		return
	}
	r.events.WithLabelValues(tag).Inc()
}

// Burned adds destroyed value for an asset.
func (r *Registry) Burned(asset string, amount uint64) {
	if r == nil {
		return
	}
	r.burned.WithLabelValues(asset).Add(float64(amount))
}

// Instance counts a created instance of the given type.
func (r *Registry) Instance(instanceType string) {
	if r == nil {
		return
	}
	r.instances.WithLabelValues(instanceType).Inc()
}

// WriteText writes every counter and gauge sample as "name{labels} value"
// lines, sorted by metric name. Histograms are written as their sample
// count and sum.
func (r *Registry) WriteText(w io.Writer) error {
	families, err := r.Gatherer().Gather()
	if err != nil {
		return err
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := formatLabels(m.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				_, err = fmt.Fprintf(w, "%s%s %v\n", mf.GetName(), labels, m.GetCounter().GetValue())
			case dto.MetricType_GAUGE:
				_, err = fmt.Fprintf(w, "%s%s %v\n", mf.GetName(), labels, m.GetGauge().GetValue())
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				_, err = fmt.Fprintf(w, "%s_count%s %d\n%s_sum%s %v\n", mf.GetName(), labels, h.GetSampleCount(), mf.GetName(), labels, h.GetSampleSum())
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", p.GetName(), p.GetValue()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
