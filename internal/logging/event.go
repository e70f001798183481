package logging

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joeycumines/logiface"
)

type (
	// Event accumulates the attributes of a single log operation, and is
	// written to a [slog.Handler] by [Writer].
	//
	// Events are pooled, and must not be retained after they are written.
	Event struct {
		//lint:ignore U1000 embedded for it's methods
		unimplementedEvent

		msg   string
		attrs []slog.Attr
		lvl   logiface.Level
	}

	// Writer bridges logiface to a [slog.Handler], and acts as the event
	// factory, releaser and writer.
	Writer struct {
		Handler slog.Handler
	}

	//lint:ignore U1000 used to embed without exporting
	unimplementedEvent = logiface.UnimplementedEvent
)

var eventPool = sync.Pool{New: func() any {
	return &Event{attrs: make([]slog.Attr, 0, 8)}
}}

func (x *Event) Level() logiface.Level {
	if x != nil {
		return x.lvl
	}
	return logiface.LevelDisabled
}

func (x *Event) AddField(key string, val any) {
	x.attrs = append(x.attrs, slog.Any(key, val))
}

func (x *Event) AddMessage(msg string) bool {
	x.msg = msg
	return true
}

func (x *Event) AddError(err error) bool {
	if err != nil {
		x.attrs = append(x.attrs, slog.Any("error", err))
	}
	return true
}

func (x *Event) AddString(key string, val string) bool {
	x.attrs = append(x.attrs, slog.String(key, val))
	return true
}

func (x *Event) AddInt(key string, val int) bool {
	x.attrs = append(x.attrs, slog.Int(key, val))
	return true
}

func (x *Event) AddInt64(key string, val int64) bool {
	x.attrs = append(x.attrs, slog.Int64(key, val))
	return true
}

func (x *Event) AddUint64(key string, val uint64) bool {
	x.attrs = append(x.attrs, slog.Uint64(key, val))
	return true
}

func (x *Event) AddFloat64(key string, val float64) bool {
	x.attrs = append(x.attrs, slog.Float64(key, val))
	return true
}

func (x *Event) AddBool(key string, val bool) bool {
	x.attrs = append(x.attrs, slog.Bool(key, val))
	return true
}

func (x *Event) AddDuration(key string, val time.Duration) bool {
	x.attrs = append(x.attrs, slog.Duration(key, val))
	return true
}

func (x *Event) AddTime(key string, val time.Time) bool {
	x.attrs = append(x.attrs, slog.Time(key, val))
	return true
}

func (x *Writer) NewEvent(level logiface.Level) *Event {
	event := eventPool.Get().(*Event)
	event.lvl = level
	event.msg = ""
	event.attrs = event.attrs[:0]
	return event
}

func (x *Writer) ReleaseEvent(event *Event) {
	if event != nil {
		event.lvl = 0
		event.msg = ""
		event.attrs = event.attrs[:0]
		eventPool.Put(event)
	}
}

// Write sends the event to the handler. Emergency events panic, after the
// record has been handled.
func (x *Writer) Write(event *Event) error {
	level := toSlogLevel(event.lvl)
	if !x.Handler.Enabled(context.Background(), level) {
		return logiface.ErrDisabled
	}
	record := slog.NewRecord(time.Now(), level, event.msg, 0)
	record.AddAttrs(event.attrs...)
	err := x.Handler.Handle(context.Background(), record)
	if event.lvl == logiface.LevelEmergency {
		panic(logiface.LevelEmergency)
	}
	return err
}

func toSlogLevel(level logiface.Level) slog.Level {
	switch level {
	case logiface.LevelTrace, logiface.LevelDebug:
		return slog.LevelDebug
	case logiface.LevelInformational:
		return slog.LevelInfo
	case logiface.LevelNotice, logiface.LevelWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
