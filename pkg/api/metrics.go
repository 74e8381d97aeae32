package api

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hazyhaar/wdtsmap/pkg/resolve"
)

// Metrics holds the Prometheus collectors of the query surface.
type Metrics struct {
	// ResolutionsTotal counts outcomes by cascade stage.
	ResolutionsTotal *prometheus.CounterVec
	// TableRows is the row count of each loaded reference table.
	TableRows *prometheus.GaugeVec
	// RequestsTotal counts endpoint calls by endpoint and transport.
	RequestsTotal *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wdtsmap_resolutions_total",
				Help: "Institution resolutions by cascade stage",
			},
			[]string{"stage"},
		),
		TableRows: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wdtsmap_table_rows",
				Help: "Rows in the loaded reference table for each year",
			},
			[]string{"year"},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wdtsmap_requests_total",
				Help: "Endpoint calls by endpoint and transport",
			},
			[]string{"endpoint", "transport"},
		),
	}
}

// Observe counts one outcome. It satisfies resolve.Observer.
func (m *Metrics) Observe(out resolve.Outcome) {
	m.ResolutionsTotal.WithLabelValues(string(out.Stage)).Inc()
}

// SetTableRows records the size of a loaded table.
func (m *Metrics) SetTableRows(year, rows int) {
	m.TableRows.WithLabelValues(strconv.Itoa(year)).Set(float64(rows))
}
