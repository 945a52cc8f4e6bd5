// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package cmd

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// newLogger builds the diagnostic sink for the protocol core. Without
// --verbose it is silent; diagnostics are purely observational either
// way.
func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.Formatter = &logrus.TextFormatter{
		TimestampFormat:  "2006-01-02 15:04:05.0000",
		FullTimestamp:    true,
		QuoteEmptyFields: true,
	}
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetOutput(io.Discard)
	}
	// Single writer, stderr only.
	log.SetNoLock()
	return log
}
