package logger

type LevelWrapper struct {
	Base
	kv []any
}

func WrapLogger(l Base) Logger {
	return &LevelWrapper{Base: l}
}

func (w *LevelWrapper) With(kv ...any) Logger {
	bound := make([]any, 0, len(w.kv)+len(kv))
	bound = append(bound, w.kv...)
	bound = append(bound, kv...)
	return &LevelWrapper{Base: w.Base, kv: bound}
}

func (w *LevelWrapper) Debug(msg string, kv ...any) {
	w.log(DebugLevel, msg, kv)
}

func (w *LevelWrapper) Info(msg string, kv ...any) {
	w.log(InfoLevel, msg, kv)
}

func (w *LevelWrapper) Warn(msg string, kv ...any) {
	w.log(WarnLevel, msg, kv)
}

func (w *LevelWrapper) Error(msg string, kv ...any) {
	w.log(ErrorLevel, msg, kv)
}

func (w *LevelWrapper) log(level LogLevel, msg string, kv []any) {
	if len(w.kv) > 0 {
		merged := make([]any, 0, len(w.kv)+len(kv))
		merged = append(merged, w.kv...)
		merged = append(merged, kv...)
		kv = merged
	}
	w.Log(level, msg, kv...)
}
