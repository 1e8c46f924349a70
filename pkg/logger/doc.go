// Package logger provides the structured logging handle used across igsaved.
//
// A Logger is built once from config.LoggingConfig and passed explicitly to
// every component that logs; there is no package-level logger. Output is a
// colored console stream by default, JSON when logging.format is "json", and
// is additionally appended to logging.file when set.
//
//	log, err := logger.New(&cfg.Logging)
//	if err != nil {
//	    return err
//	}
//	log.WithField("collection", id).Info("listing posts")
//
// Tests use NewNopLogger or NewTestLogger, which records messages for
// assertions.
package logger
