package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	AnnouncementsFetchedTotal metric.Int64Counter
	AnnouncementsParsedTotal  metric.Int64Counter
	ParseConfidenceScore      metric.Float64Histogram
	TwitterSearchesTotal      metric.Int64Counter
	DbQueryErrorsTotal        metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments once, using the
// globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("ConcertTracker")
		var err error
		m := &AppMetrics{}

		m.AnnouncementsFetchedTotal, err = meter.Int64Counter(
			"announcements_fetched_total",
			metric.WithDescription("Total number of announcements fetched from the social feed"),
			metric.WithUnit("{announcement}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create announcements_fetched_total: %v", err)
		}

		m.AnnouncementsParsedTotal, err = meter.Int64Counter(
			"announcements_parsed_total",
			metric.WithDescription("Total number of announcements run through the parser"),
			metric.WithUnit("{announcement}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create announcements_parsed_total: %v", err)
		}

		m.ParseConfidenceScore, err = meter.Float64Histogram(
			"parse_confidence_score",
			metric.WithDescription("Confidence score distribution of parsed announcements"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create parse_confidence_score: %v", err)
		}

		m.TwitterSearchesTotal, err = meter.Int64Counter(
			"twitter_searches_total",
			metric.WithDescription("Total number of Twitter search requests issued"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create twitter_searches_total: %v", err)
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance. Panics if
// InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
