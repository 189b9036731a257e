package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the various metrics used for monitoring the application.
// It includes counters and a histogram for the HTTP API, counters for
// employee lifecycle events and a histogram for database query latency.
type Metrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	EmployeesCreated    prometheus.Counter
	EmployeesDeleted    prometheus.Counter
	DuplicateEmails     prometheus.Counter
	DBQueryDuration     *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with the provided Registerer.
// It initializes the API request counters and latency histogram, the
// employee lifecycle counters and the database query histogram.
//
// Parameters:
//   - reg: A prometheus.Registerer used to register the metrics.
//
// Returns:
//   - A pointer to the newly created Metrics instance.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "athena_http_requests_total",
			Help: "Total number of HTTP requests served by the employee API.",
		}, []string{"method", "route", "code"}),
		HTTPRequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "athena_http_request_duration_seconds",
			Help:    "Measures how long the employee API takes to answer a request.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		EmployeesCreated: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "athena_employees_created_total",
			Help: "Total number of employees created.",
		}),
		EmployeesDeleted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "athena_employees_deleted_total",
			Help: "Total number of delete requests applied to employees.",
		}),
		DuplicateEmails: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "athena_duplicate_emails_total",
			Help: "Total number of employee writes rejected because the email was already taken.",
		}),
		DBQueryDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "athena_db_query_duration_seconds",
			Help:    "Duration of database queries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query_type"}), // query_type: 'find_employee_by_id', 'save_employee'
	}

	return metrics
}
