package nif

import (
	"os"
	"strings"
	"sync"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-bubblegum/pkg/metrics"
)

var (
	initOnce sync.Once
	initApp  *newrelic.Application
	initErr  error
)

// Init configures process-wide logging and metrics. Only the first call has
// any effect. Later and concurrent calls return its result.
func Init(config *Config) (*newrelic.Application, error) {
	initOnce.Do(func() {
		initApp, initErr = initialize(config)
	})
	return initApp, initErr
}

func initialize(config *Config) (*newrelic.Application, error) {
	var app *newrelic.Application
	if len(config.NewRelicLicenseKey) > 0 {
		nr, err := newrelic.NewApplication(
			newrelic.ConfigAppName(config.AppName),
			newrelic.ConfigLicense(config.NewRelicLicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			return nil, errors.Wrap(err, "error connecting to new relic")
		}
		app = nr
	}

	configureLogger(config, app)
	return app, nil
}

func configureLogger(config *Config, app *newrelic.Application) {
	if app != nil {
		logrus.SetFormatter(metrics.NewCustomNewRelicLogFormatter(app, &logrus.JSONFormatter{}))
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(os.Stdout)
}
