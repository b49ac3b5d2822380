package cloud

// AddressStatus is the lifecycle status of a floating address.
type AddressStatus string

const (
	// AddressAvailable means the address is allocated but bound to nothing.
	AddressAvailable AddressStatus = "Available"
	// AddressInUse means the address is bound to an instance.
	AddressInUse AddressStatus = "InUse"
	// AddressAssociating is transient: a bind has been issued but not settled.
	AddressAssociating AddressStatus = "Associating"
	// AddressUnassociating is transient: an unbind has been issued but not settled.
	AddressUnassociating AddressStatus = "Unassociating"
)

// Settled reports whether s is a terminal status.
func (s AddressStatus) Settled() bool {
	return s == AddressAvailable || s == AddressInUse
}

// InstanceStatus is the power lifecycle status of an instance.
type InstanceStatus string

const (
	InstancePending  InstanceStatus = "Pending"
	InstanceStarting InstanceStatus = "Starting"
	InstanceRunning  InstanceStatus = "Running"
	InstanceStopping InstanceStatus = "Stopping"
	InstanceStopped  InstanceStatus = "Stopped"
)

// Settled reports whether s is a terminal power state.
func (s InstanceStatus) Settled() bool {
	return s == InstanceRunning || s == InstanceStopped
}

// ChargeMode selects billing behaviour while an instance is stopped.
type ChargeMode string

const (
	StopCharging ChargeMode = "StopCharging"
	KeepCharging ChargeMode = "KeepCharging"
)

// Address is a snapshot of a floating address. AllocationID is its only
// stable identity; the IP literal may be reused across allocations.
type Address struct {
	AllocationID string
	IP           string
	Status       AddressStatus
	Region       string
	// InstanceID is the instance the control plane reports the address bound
	// to, empty when unbound. Informational only.
	InstanceID string

	Bandwidth           *int
	InternetChargeType  *string
	SupportsUnassociate *bool
}

// Instance is a snapshot of a compute instance.
type Instance struct {
	ID     string
	Name   string
	Status InstanceStatus
	Region string

	bound *Address
}

// BoundAddress returns the address the snapshot reports bound to the
// instance. The second value is false when nothing is bound.
func (i Instance) BoundAddress() (Address, bool) {
	if i.bound == nil {
		return Address{}, false
	}
	return *i.bound, true
}

// WithBoundAddress returns a copy of i reporting addr as its bound address.
func (i Instance) WithBoundAddress(addr Address) Instance {
	a := addr
	i.bound = &a
	return i
}

// WithoutBoundAddress returns a copy of i with no bound address.
func (i Instance) WithoutBoundAddress() Instance {
	i.bound = nil
	return i
}

// AllocationConfig holds the parameters for allocating a new address.
type AllocationConfig struct {
	Region             string
	Bandwidth          int
	InstanceChargeType string
	InternetChargeType string
	ISP                string
}

// InstanceFilter narrows ListInstances. Zero fields match everything.
type InstanceFilter struct {
	IDs    []string
	Status *InstanceStatus
}

// AddressFilter narrows ListAddresses. Zero fields match everything.
type AddressFilter struct {
	Status       *AddressStatus
	Region       string
	AllocationID string
}

// Matches reports whether inst satisfies the filter.
func (f InstanceFilter) Matches(inst Instance) bool {
	if f.Status != nil && inst.Status != *f.Status {
		return false
	}
	if len(f.IDs) == 0 {
		return true
	}
	for _, id := range f.IDs {
		if id == inst.ID {
			return true
		}
	}
	return false
}

// Matches reports whether addr satisfies the filter.
func (f AddressFilter) Matches(addr Address) bool {
	if f.Status != nil && addr.Status != *f.Status {
		return false
	}
	if f.Region != "" && addr.Region != f.Region {
		return false
	}
	if f.AllocationID != "" && addr.AllocationID != f.AllocationID {
		return false
	}
	return true
}

// StatusPtr returns a pointer to s, for filter literals.
func StatusPtr[S AddressStatus | InstanceStatus](s S) *S {
	return &s
}
