package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/imamik/floatctl/internal/cloud"
	"github.com/imamik/floatctl/internal/orchestration"
)

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Report writes command results to one writer.
type Report struct {
	out    io.Writer
	styles styles
}

// NewReport creates a Report writing to w. Colors are used only when w is a
// terminal.
func NewReport(w io.Writer) *Report {
	return &Report{out: w, styles: newStyles(lipgloss.NewRenderer(w))}
}

// IP reports the address bound to inst.
func (r *Report) IP(inst cloud.Instance) {
	addr, ok := inst.BoundAddress()
	if !ok || addr.IP == "" {
		r.printf("%s\n", r.styles.warning.Render("No address bound"))
		return
	}
	r.printf("The ip address of %s is:\n%s\n", r.instance(inst), r.styles.value.Render(addr.IP))
}

// Status reports the lifecycle status of inst.
func (r *Report) Status(inst cloud.Instance) {
	r.printf("The status of %s is:\n%s\n", r.instance(inst), r.status(inst.Status))
}

// Power reports the state an instance settled in after stop or start.
func (r *Report) Power(inst cloud.Instance) {
	r.printf("%s %s is %s\n", r.styles.ok.Render("[OK]"), r.instance(inst), r.status(inst.Status))
}

// Rebind reports the outcome of a rebind run.
func (r *Report) Rebind(res orchestration.RebindResult) {
	if res.State == orchestration.StateAborted {
		r.printf("%s no address to bind and allocation disallowed\n", r.styles.warning.Render("[??]"))
		return
	}
	r.printf("%s bound %s to %s\n", r.styles.ok.Render("[OK]"), r.address(res.Address), r.instance(res.Instance))
	if res.Allocated {
		r.printf("     %s\n", r.styles.dim.Render("address was newly allocated"))
	}
	if res.Previous.Unbound {
		r.printf("     %s\n", r.styles.dim.Render(previous(res.Previous)))
	}
}

// Release reports the outcome of a release run.
func (r *Report) Release(out orchestration.UnbindOutcome) {
	if !out.Unbound {
		r.printf("%s no address to release\n", r.styles.warning.Render("[??]"))
		return
	}
	r.printf("%s %s\n", r.styles.ok.Render("[OK]"), previous(out))
}

// Error reports a failure.
func (r *Report) Error(err error) {
	r.printf("%s %v\n", r.styles.failed.Render("[!!]"), err)
}

func previous(out orchestration.UnbindOutcome) string {
	verb := "unbound"
	if out.Released {
		verb = "released"
	}
	return fmt.Sprintf("%s %s (%s)", verb, out.Address.AllocationID, out.Address.IP)
}

func (r *Report) instance(inst cloud.Instance) string {
	if inst.Name == "" {
		return r.styles.title.Render(inst.ID)
	}
	return r.styles.title.Render(inst.ID) + r.styles.dim.Render(" ("+inst.Name+")")
}

func (r *Report) address(addr cloud.Address) string {
	return r.styles.title.Render(addr.AllocationID) + r.styles.dim.Render(" ("+addr.IP+")")
}

func (r *Report) status(s cloud.InstanceStatus) string {
	switch s {
	case cloud.InstanceRunning:
		return r.styles.ok.Render(string(s))
	case cloud.InstanceStopped:
		return r.styles.value.Render(string(s))
	default:
		return r.styles.warning.Render(string(s))
	}
}

func (r *Report) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}
