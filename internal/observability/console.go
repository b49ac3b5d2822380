package observability

import (
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// ConsoleOptions configures a ConsoleObserver.
type ConsoleOptions struct {
	Out     io.Writer
	Verbose bool // show Verbose events at debug level
	Quiet   bool // discard everything
	NoColor bool
}

// ConsoleObserver writes events as human-readable log lines through zerolog.
type ConsoleObserver struct {
	logger        zerolog.Logger
	contextFields map[string]string
}

// NewConsoleObserver creates a console observer.
func NewConsoleObserver(opts ConsoleOptions) *ConsoleObserver {
	level := zerolog.InfoLevel
	switch {
	case opts.Quiet:
		level = zerolog.Disabled
	case opts.Verbose:
		level = zerolog.DebugLevel
	}

	writer := zerolog.ConsoleWriter{
		Out:        opts.Out,
		NoColor:    opts.NoColor,
		TimeFormat: time.TimeOnly,
	}
	return &ConsoleObserver{
		logger:        zerolog.New(writer).Level(level).With().Timestamp().Logger(),
		contextFields: map[string]string{},
	}
}

// NewZerologObserver wraps an existing zerolog logger.
func NewZerologObserver(logger zerolog.Logger) *ConsoleObserver {
	return &ConsoleObserver{logger: logger, contextFields: map[string]string{}}
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	event = mergeFields(event, o.contextFields)

	e := o.logger.WithLevel(levelFor(event))
	if event.Workflow != "" {
		e = e.Str("workflow", event.Workflow)
	}
	if event.State != "" {
		e = e.Str("state", event.State)
	}
	if event.Resource != "" {
		e = e.Str("resource", event.Resource)
	}

	keys := make([]string, 0, len(event.Fields))
	for k := range event.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e = e.Str(k, event.Fields[k])
	}
	e.Msg(event.Message)
}

// WithFields implements Observer.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	return &ConsoleObserver{
		logger:        o.logger,
		contextFields: copyFields(o.contextFields, fields),
	}
}

func levelFor(event Event) zerolog.Level {
	switch {
	case event.Type == EventWorkflowFailed:
		return zerolog.ErrorLevel
	case event.Verbose, event.Type == EventWorkflowState:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}
