package orchestration

import (
	"fmt"
	"strconv"

	"github.com/imamik/floatctl/internal/cloud"
	"github.com/imamik/floatctl/internal/observability"
)

// notifier stamps events with the workflow they belong to.
type notifier struct {
	observer observability.Observer
	workflow string
}

func (n notifier) emit(e observability.Event) {
	if n.observer == nil {
		return
	}
	e.Workflow = n.workflow
	n.observer.Event(e)
}

func (n notifier) info(msg string, args ...any) {
	n.emit(observability.Event{Type: observability.EventProgress, Message: fmt.Sprintf(msg, args...)})
}

func (n notifier) state(s State) {
	n.emit(observability.Event{
		Type:    observability.EventWorkflowState,
		State:   string(s),
		Message: "entering " + string(s),
	})
}

func (n notifier) addressSnapshot(msg string, addr cloud.Address) {
	fields := map[string]string{
		"ip":     addr.IP,
		"status": string(addr.Status),
		"region": addr.Region,
	}
	if addr.InstanceID != "" {
		fields["instance"] = addr.InstanceID
	}
	if addr.Bandwidth != nil {
		fields["bandwidth"] = strconv.Itoa(*addr.Bandwidth)
	}
	if addr.InternetChargeType != nil {
		fields["internet_charge_type"] = *addr.InternetChargeType
	}
	n.emit(observability.Event{
		Type:     observability.EventResourceSnapshot,
		Message:  msg,
		Resource: addr.AllocationID,
		Fields:   fields,
		Verbose:  true,
	})
}

func (n notifier) instanceSnapshot(msg string, inst cloud.Instance) {
	fields := map[string]string{
		"name":   inst.Name,
		"status": string(inst.Status),
		"region": inst.Region,
	}
	if addr, ok := inst.BoundAddress(); ok {
		fields["address"] = addr.AllocationID
		fields["ip"] = addr.IP
	}
	n.emit(observability.Event{
		Type:     observability.EventResourceSnapshot,
		Message:  msg,
		Resource: inst.ID,
		Fields:   fields,
		Verbose:  true,
	})
}

func (n notifier) allocationSnapshot(msg string, cfg cloud.AllocationConfig) {
	n.emit(observability.Event{
		Type:    observability.EventResourceSnapshot,
		Message: msg,
		Fields: map[string]string{
			"region":               cfg.Region,
			"bandwidth":            strconv.Itoa(cfg.Bandwidth),
			"instance_charge_type": cfg.InstanceChargeType,
			"internet_charge_type": cfg.InternetChargeType,
			"isp":                  cfg.ISP,
		},
		Verbose: true,
	})
}

func (n notifier) waiting(kind, resource, msg string) func() {
	return func() {
		n.emit(observability.Event{
			Type:     observability.EventPollWaiting,
			Message:  msg,
			Resource: resource,
			Fields:   map[string]string{"kind": kind},
		})
	}
}

func (n notifier) settled(kind, resource, status string) {
	n.emit(observability.Event{
		Type:     observability.EventPollSettled,
		Message:  fmt.Sprintf("%s reached %s", kind, status),
		Resource: resource,
		Fields:   map[string]string{"kind": kind, "status": status},
		Verbose:  true,
	})
}

func (n notifier) complete(msg string, args ...any) {
	n.emit(observability.Event{
		Type:    observability.EventWorkflowCompleted,
		Message: fmt.Sprintf(msg, args...),
	})
}
