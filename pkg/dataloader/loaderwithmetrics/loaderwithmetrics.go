package loaderwithmetrics

import (
	"fmt"
	"os"
	"sort"
	"time"

	"support-chat-be/internal/pkg/logger"
	"support-chat-be/pkg/dataloader"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var loadMetric = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "support_chat_data_load_millis",
	Help:    "Milliseconds to load a data file into the DB",
	Buckets: []float64{100, 500, 1000, 5000, 10000, 30000, 60000, 300000, 600000},
}, []string{"loader"})

var errorMetric = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "support_chat_data_load_errors",
	Help:    "Errors encountered while trying to load data into the DB",
	Buckets: []float64{0, 1, 10, 100, 1000},
}, []string{"loader"})

// loadOrder lists tables parents first so foreign keys resolve.
var loadOrder = []string{
	"users",
	"distribution_centers",
	"products",
	"orders",
	"inventory_items",
	"order_items",
}

type LoaderWithMetrics struct {
	loaders    []dataloader.DataLoader
	logger     logger.ILogger
	promPusher *push.Pusher
}

func New(wrappedLoaders []dataloader.DataLoader, log logger.ILogger) *LoaderWithMetrics {
	loader := &LoaderWithMetrics{
		loaders: sortLoaders(wrappedLoaders),
		logger:  log,
	}

	if pushgateway := os.Getenv("LOADER_PROMETHEUS_PUSHGATEWAY"); pushgateway != "" {
		loader.promPusher = push.New(pushgateway, "support-chat-loader")
		loader.promPusher.Collector(errorMetric)
		loader.promPusher.Collector(loadMetric)
	}

	return loader
}

// sortLoaders puts known tables in load order. Unknown loaders keep their
// relative order after the known ones.
func sortLoaders(loaders []dataloader.DataLoader) []dataloader.DataLoader {
	rank := make(map[string]int, len(loadOrder))
	for i, name := range loadOrder {
		rank[name] = i
	}
	position := func(name string) int {
		if r, ok := rank[name]; ok {
			return r
		}
		return len(loadOrder)
	}

	sorted := append([]dataloader.DataLoader{}, loaders...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return position(sorted[i].Name()) < position(sorted[j].Name())
	})
	return sorted
}

func (l *LoaderWithMetrics) Name() string {
	return "all"
}

func (l *LoaderWithMetrics) Load() {
	overallStart := time.Now()
	l.logger.Info("LOADER", fmt.Sprintf("starting %d loaders", len(l.loaders)), nil)
	for _, loader := range l.loaders {
		start := time.Now()
		loader.Load()
		totalTime := time.Since(start)
		l.logger.Info("LOADER", fmt.Sprintf("loader %q complete", loader.Name()), map[string]interface{}{
			"duration": totalTime.String(),
		})

		loadMetric.WithLabelValues(loader.Name()).Observe(float64(totalTime.Milliseconds()))
		errorMetric.WithLabelValues(loader.Name()).Observe(float64(len(loader.Errors())))
	}
	overallDuration := time.Since(overallStart)
	loadMetric.WithLabelValues("total").Observe(float64(overallDuration.Milliseconds()))
	l.logger.Info("LOADER", fmt.Sprintf("%d loaders finished", len(l.loaders)), map[string]interface{}{
		"duration": overallDuration.String(),
	})

	if l.promPusher != nil {
		if err := l.promPusher.Add(); err != nil {
			l.logger.Error("LOADER", "could not push to prometheus pushgateway", map[string]interface{}{"error": err})
		}
	}
}

func (l *LoaderWithMetrics) Errors() []error {
	var errs []error
	for _, loader := range l.loaders {
		for _, err := range loader.Errors() {
			errs = append(errs, errors.Wrap(err, fmt.Sprintf("loader %q returned error", loader.Name())))
		}
	}
	return errs
}

// Loaders returns the wrapped loaders in the order they run.
func (l *LoaderWithMetrics) Loaders() []dataloader.DataLoader {
	return l.loaders
}
