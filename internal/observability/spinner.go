package observability

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

// SpinnerObserver animates a terminal spinner while the poller is waiting and
// clears it as soon as any other event arrives. Place it before console sinks
// in Multi so the spinner line is erased before the next log line.
type SpinnerObserver struct {
	mu      *sync.Mutex
	spinner *spinner.Spinner
}

// NewSpinnerObserver creates a spinner writing to w. The spinner only
// animates when w is a terminal.
func NewSpinnerObserver(w io.Writer) *SpinnerObserver {
	opt := spinner.WithWriter(w)
	if f, ok := w.(*os.File); ok {
		opt = spinner.WithWriterFile(f)
	}
	s := spinner.New(spinner.CharSets[9], 200*time.Millisecond, opt)
	return &SpinnerObserver{mu: &sync.Mutex{}, spinner: s}
}

// Event implements Observer.
func (o *SpinnerObserver) Event(event Event) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if event.Type != EventPollWaiting {
		if o.spinner.Active() {
			o.spinner.Stop()
		}
		return
	}
	o.spinner.Suffix = " " + event.Message
	if !o.spinner.Active() {
		o.spinner.Start()
	}
}

// WithFields implements Observer. Spinner output carries no fields.
func (o *SpinnerObserver) WithFields(map[string]string) Observer {
	return o
}

// Stop clears the spinner if it is still running.
func (o *SpinnerObserver) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.spinner.Active() {
		o.spinner.Stop()
	}
}
