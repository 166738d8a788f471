package logging

import "github.com/rs/zerolog"

// RetryLogger adapts Logger to retryablehttp.LeveledLogger.
// Retry chatter is demoted: warnings and errors surface, info is debug.
type RetryLogger struct {
	L *Logger
}

func (r RetryLogger) Error(msg string, keysAndValues ...interface{}) {
	r.event(r.L.Error(), keysAndValues).Msg(msg)
}

func (r RetryLogger) Warn(msg string, keysAndValues ...interface{}) {
	r.event(r.L.Warn(), keysAndValues).Msg(msg)
}

func (r RetryLogger) Info(msg string, keysAndValues ...interface{}) {
	r.event(r.L.Debug(), keysAndValues).Msg(msg)
}

func (r RetryLogger) Debug(msg string, keysAndValues ...interface{}) {
	r.event(r.L.Debug(), keysAndValues).Msg(msg)
}

func (RetryLogger) event(e *zerolog.Event, kv []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, kv[i+1])
	}
	return e
}
