// Package logx centralizes the structured logging conventions used
// across the module: every per-event warning carries the offending
// node's source-location string, every component carries its own name.
package logx

import (
	"github.com/sirupsen/logrus"
)

// Log is the package-wide logger. Tests may swap its output via
// logrus.SetOutput; production wiring (cmd/evmon-demo) sets the level
// and formatter once at startup.
var Log = logrus.StandardLogger()

// ForComponent returns a logger entry tagged with a component name, e.g.
// "pipeline", "driver", "hist".
func ForComponent(component string) *logrus.Entry {
	return Log.WithField("component", component)
}

// ForLocation returns a logger entry tagged with a node's diagnostic
// source-location string.
func ForLocation(location string) *logrus.Entry {
	return Log.WithField("source", location)
}
