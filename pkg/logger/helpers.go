package logger

// PostFields returns the standard fields for a post-level log line
func PostFields(postID, owner, kind string) map[string]interface{} {
	return map[string]interface{}{
		"post_id": postID,
		"owner":   owner,
		"type":    kind,
	}
}

// LogPostResult logs the outcome of processing a single post
func LogPostResult(log Logger, postID, owner, kind string, err error) {
	l := log.WithFields(PostFields(postID, owner, kind))
	if err != nil {
		l.WithError(err).Warn("post failed")
		return
	}
	l.Info("post downloaded")
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (n nopLogger) Debug(string)                                   {}
func (n nopLogger) Info(string)                                    {}
func (n nopLogger) Warn(string)                                    {}
func (n nopLogger) Error(string)                                   {}
func (n nopLogger) WithField(string, interface{}) Logger           { return n }
func (n nopLogger) WithFields(map[string]interface{}) Logger       { return n }
func (n nopLogger) WithError(error) Logger                         { return n }
func (n nopLogger) DebugWithFields(string, map[string]interface{}) {}
func (n nopLogger) InfoWithFields(string, map[string]interface{})  {}
func (n nopLogger) WarnWithFields(string, map[string]interface{})  {}
func (n nopLogger) ErrorWithFields(string, map[string]interface{}) {}
