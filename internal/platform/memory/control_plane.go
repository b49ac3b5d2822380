package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	memdb "github.com/hashicorp/go-memdb"

	"github.com/imamik/floatctl/internal/cloud"
)

// ErrInvalidState is returned when a mutation is not allowed in the
// resource's current status.
var ErrInvalidState = errors.New("resource is in an invalid state for this operation")

// ErrNotFound is returned when a mutation targets an unknown resource.
var ErrNotFound = errors.New("resource not found")

// Call is one mutating request recorded in the call log.
type Call struct {
	Operation    string
	InstanceID   string
	AllocationID string
	Region       string
	Mode         cloud.ChargeMode
	Force        bool
}

// ControlPlane implements cloud.ControlPlane in memory.
type ControlPlane struct {
	db          *memdb.MemDB
	settleAfter int

	mu       sync.Mutex
	calls    []Call
	nextID   int
	failures map[string]error

	allocate func(cloud.AllocationConfig) (cloud.Address, error)
}

// Option configures a ControlPlane.
type Option func(*ControlPlane)

// WithSettleAfter sets how many list calls a transient status survives. Zero
// settles mutations immediately; a negative value never settles them.
func WithSettleAfter(n int) Option {
	return func(c *ControlPlane) {
		c.settleAfter = n
	}
}

// WithAllocator replaces the default allocation behaviour, for simulating
// incomplete provider responses.
func WithAllocator(fn func(cloud.AllocationConfig) (cloud.Address, error)) Option {
	return func(c *ControlPlane) {
		c.allocate = fn
	}
}

// New creates an empty in-memory control plane.
func New(opts ...Option) (*ControlPlane, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("failed to create memdb: %w", err)
	}
	c := &ControlPlane{
		db:          db,
		settleAfter: 1,
		failures:    make(map[string]error),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AddInstance seeds an instance. A bound address on the snapshot is stored as
// an InUse address attached to it.
func (c *ControlPlane) AddInstance(inst cloud.Instance) error {
	txn := c.db.Txn(true)
	defer txn.Abort()

	if err := txn.Insert(instanceTable, &instanceRecord{
		ID:     inst.ID,
		Name:   inst.Name,
		Status: inst.Status,
		Region: inst.Region,
	}); err != nil {
		return fmt.Errorf("insert instance: %w", err)
	}
	if addr, ok := inst.BoundAddress(); ok {
		addr.Status = cloud.AddressInUse
		addr.InstanceID = inst.ID
		if addr.Region == "" {
			addr.Region = inst.Region
		}
		if err := txn.Insert(addressTable, recordFromAddress(addr)); err != nil {
			return fmt.Errorf("insert address: %w", err)
		}
	}
	txn.Commit()
	return nil
}

// AddAddress seeds an address.
func (c *ControlPlane) AddAddress(addr cloud.Address) error {
	txn := c.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert(addressTable, recordFromAddress(addr)); err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	txn.Commit()
	return nil
}

// FailNext makes the next call of operation return err.
func (c *ControlPlane) FailNext(operation string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[operation] = err
}

// Calls returns a copy of the mutating calls issued so far.
func (c *ControlPlane) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// Operations returns the operation names of the call log, in order.
func (c *ControlPlane) Operations() []string {
	calls := c.Calls()
	ops := make([]string, len(calls))
	for i, call := range calls {
		ops[i] = call.Operation
	}
	return ops
}

// ListInstances implements cloud.ControlPlane.
func (c *ControlPlane) ListInstances(_ context.Context, filter cloud.InstanceFilter) ([]cloud.Instance, error) {
	if err := c.failure("list-instances"); err != nil {
		return nil, err
	}
	if err := c.tick(); err != nil {
		return nil, err
	}

	txn := c.db.Txn(false)
	bound, err := boundAddresses(txn)
	if err != nil {
		return nil, err
	}
	it, err := txn.Get(instanceTable, idIndex)
	if err != nil {
		return nil, fmt.Errorf("instance get failed: %w", err)
	}

	var out []cloud.Instance
	for obj := it.Next(); obj != nil; obj = it.Next() {
		inst := obj.(*instanceRecord).snapshot()
		if addr, ok := bound[inst.ID]; ok {
			inst = inst.WithBoundAddress(addr)
		}
		if filter.Matches(inst) {
			out = append(out, inst)
		}
	}
	return out, nil
}

// ListAddresses implements cloud.ControlPlane.
func (c *ControlPlane) ListAddresses(_ context.Context, filter cloud.AddressFilter) ([]cloud.Address, error) {
	if err := c.failure("list-addresses"); err != nil {
		return nil, err
	}
	if err := c.tick(); err != nil {
		return nil, err
	}

	txn := c.db.Txn(false)
	it, err := txn.Get(addressTable, idIndex)
	if err != nil {
		return nil, fmt.Errorf("address get failed: %w", err)
	}
	var out []cloud.Address
	for obj := it.Next(); obj != nil; obj = it.Next() {
		addr := obj.(*addressRecord).snapshot()
		if filter.Matches(addr) {
			out = append(out, addr)
		}
	}
	return out, nil
}

// AssociateAddress implements cloud.ControlPlane.
func (c *ControlPlane) AssociateAddress(_ context.Context, instanceID, allocationID, region string) error {
	if err := c.record(Call{Operation: "associate", InstanceID: instanceID, AllocationID: allocationID, Region: region}); err != nil {
		return err
	}
	return c.update(func(txn *memdb.Txn) error {
		if _, err := c.instance(txn, instanceID); err != nil {
			return err
		}
		addr, err := c.address(txn, allocationID)
		if err != nil {
			return err
		}
		if addr.Status != cloud.AddressAvailable {
			return fmt.Errorf("%w: address %s is %s", ErrInvalidState, allocationID, addr.Status)
		}
		bound, err := boundAddresses(txn)
		if err != nil {
			return err
		}
		if other, ok := bound[instanceID]; ok {
			return fmt.Errorf("%w: instance %s already holds address %s", ErrInvalidState, instanceID, other.AllocationID)
		}

		next := *addr
		next.InstanceID = instanceID
		c.transition(&next, cloud.AddressAssociating, cloud.AddressInUse)
		return txn.Insert(addressTable, &next)
	})
}

// UnassociateAddress implements cloud.ControlPlane.
func (c *ControlPlane) UnassociateAddress(_ context.Context, instanceID, allocationID, region string) error {
	if err := c.record(Call{Operation: "unassociate", InstanceID: instanceID, AllocationID: allocationID, Region: region}); err != nil {
		return err
	}
	return c.update(func(txn *memdb.Txn) error {
		addr, err := c.address(txn, allocationID)
		if err != nil {
			return err
		}
		if addr.Status != cloud.AddressInUse || addr.InstanceID != instanceID {
			return fmt.Errorf("%w: address %s is %s on %q", ErrInvalidState, allocationID, addr.Status, addr.InstanceID)
		}
		next := *addr
		c.transition(&next, cloud.AddressUnassociating, cloud.AddressAvailable)
		return txn.Insert(addressTable, &next)
	})
}

// AllocateAddress implements cloud.ControlPlane.
func (c *ControlPlane) AllocateAddress(_ context.Context, cfg cloud.AllocationConfig) (cloud.Address, error) {
	if err := c.record(Call{Operation: "allocate", Region: cfg.Region}); err != nil {
		return cloud.Address{}, err
	}
	if c.allocate != nil {
		return c.allocate(cfg)
	}

	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.mu.Unlock()

	rec := &addressRecord{
		AllocationID: fmt.Sprintf("eip-mem-%04d", id),
		IP:           fmt.Sprintf("203.0.113.%d", id%254+1),
		Status:       cloud.AddressAvailable,
		Region:       cfg.Region,
		Bandwidth:    cfg.Bandwidth,
		ChargeType:   cfg.InternetChargeType,
	}
	err := c.update(func(txn *memdb.Txn) error {
		return txn.Insert(addressTable, rec)
	})
	if err != nil {
		return cloud.Address{}, err
	}
	return rec.snapshot(), nil
}

// ReleaseAddress implements cloud.ControlPlane.
func (c *ControlPlane) ReleaseAddress(_ context.Context, allocationID string) error {
	if err := c.record(Call{Operation: "release", AllocationID: allocationID}); err != nil {
		return err
	}
	return c.update(func(txn *memdb.Txn) error {
		addr, err := c.address(txn, allocationID)
		if err != nil {
			return err
		}
		if addr.Status != cloud.AddressAvailable {
			return fmt.Errorf("%w: address %s is %s", ErrInvalidState, allocationID, addr.Status)
		}
		return txn.Delete(addressTable, addr)
	})
}

// StopInstance implements cloud.ControlPlane.
func (c *ControlPlane) StopInstance(_ context.Context, instanceID string, mode cloud.ChargeMode, force bool) error {
	if err := c.record(Call{Operation: "stop", InstanceID: instanceID, Mode: mode, Force: force}); err != nil {
		return err
	}
	return c.power(instanceID, cloud.InstanceRunning, cloud.InstanceStopping, cloud.InstanceStopped)
}

// StartInstance implements cloud.ControlPlane.
func (c *ControlPlane) StartInstance(_ context.Context, instanceID string) error {
	if err := c.record(Call{Operation: "start", InstanceID: instanceID}); err != nil {
		return err
	}
	return c.power(instanceID, cloud.InstanceStopped, cloud.InstanceStarting, cloud.InstanceRunning)
}

func (c *ControlPlane) power(instanceID string, from, via, to cloud.InstanceStatus) error {
	return c.update(func(txn *memdb.Txn) error {
		inst, err := c.instance(txn, instanceID)
		if err != nil {
			return err
		}
		if inst.Status != from {
			return fmt.Errorf("%w: instance %s is %s", ErrInvalidState, instanceID, inst.Status)
		}
		next := *inst
		next.Target = to
		next.Pending = c.settleAfter
		next.Status = via
		if c.settleAfter == 0 {
			next.Status = to
		}
		return txn.Insert(instanceTable, &next)
	})
}

func (c *ControlPlane) transition(rec *addressRecord, via, to cloud.AddressStatus) {
	rec.Target = to
	rec.Pending = c.settleAfter
	rec.Status = via
	if c.settleAfter == 0 {
		c.settleAddress(rec)
	}
}

func (c *ControlPlane) settleAddress(rec *addressRecord) {
	rec.Status = rec.Target
	rec.Pending = 0
	if rec.Status == cloud.AddressAvailable {
		rec.InstanceID = ""
	}
}

// tick advances every pending transition by one list call.
func (c *ControlPlane) tick() error {
	return c.update(func(txn *memdb.Txn) error {
		addrs, err := txn.Get(addressTable, idIndex)
		if err != nil {
			return err
		}
		var nextAddrs []*addressRecord
		for obj := addrs.Next(); obj != nil; obj = addrs.Next() {
			rec := obj.(*addressRecord)
			if rec.Pending <= 0 {
				continue
			}
			next := *rec
			next.Pending--
			if next.Pending == 0 {
				c.settleAddress(&next)
			}
			nextAddrs = append(nextAddrs, &next)
		}

		insts, err := txn.Get(instanceTable, idIndex)
		if err != nil {
			return err
		}
		var nextInsts []*instanceRecord
		for obj := insts.Next(); obj != nil; obj = insts.Next() {
			rec := obj.(*instanceRecord)
			if rec.Pending <= 0 {
				continue
			}
			next := *rec
			next.Pending--
			if next.Pending == 0 {
				next.Status = next.Target
			}
			nextInsts = append(nextInsts, &next)
		}

		for _, rec := range nextAddrs {
			if err := txn.Insert(addressTable, rec); err != nil {
				return err
			}
		}
		for _, rec := range nextInsts {
			if err := txn.Insert(instanceTable, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *ControlPlane) update(fn func(txn *memdb.Txn) error) error {
	txn := c.db.Txn(true)
	defer txn.Abort()
	if err := fn(txn); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (c *ControlPlane) record(call Call) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err, ok := c.failures[call.Operation]; ok {
		delete(c.failures, call.Operation)
		return err
	}
	c.calls = append(c.calls, call)
	return nil
}

func (c *ControlPlane) failure(operation string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err, ok := c.failures[operation]; ok {
		delete(c.failures, operation)
		return err
	}
	return nil
}

func (c *ControlPlane) address(txn *memdb.Txn, allocationID string) (*addressRecord, error) {
	obj, err := txn.First(addressTable, idIndex, allocationID)
	if err != nil {
		return nil, fmt.Errorf("address lookup failed: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: address %s", ErrNotFound, allocationID)
	}
	return obj.(*addressRecord), nil
}

func (c *ControlPlane) instance(txn *memdb.Txn, id string) (*instanceRecord, error) {
	obj, err := txn.First(instanceTable, idIndex, id)
	if err != nil {
		return nil, fmt.Errorf("instance lookup failed: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: instance %s", ErrNotFound, id)
	}
	return obj.(*instanceRecord), nil
}

// boundAddresses maps instance IDs to the address attached to them. An
// address counts as attached from the moment association is requested until
// unassociation settles.
func boundAddresses(txn *memdb.Txn) (map[string]cloud.Address, error) {
	it, err := txn.Get(addressTable, idIndex)
	if err != nil {
		return nil, fmt.Errorf("address get failed: %w", err)
	}
	bound := make(map[string]cloud.Address)
	for obj := it.Next(); obj != nil; obj = it.Next() {
		rec := obj.(*addressRecord)
		if rec.InstanceID != "" && rec.Status != cloud.AddressAvailable {
			bound[rec.InstanceID] = rec.snapshot()
		}
	}
	return bound, nil
}

func recordFromAddress(addr cloud.Address) *addressRecord {
	rec := &addressRecord{
		AllocationID: addr.AllocationID,
		IP:           addr.IP,
		Status:       addr.Status,
		Region:       addr.Region,
		InstanceID:   addr.InstanceID,
	}
	if rec.Status == "" {
		rec.Status = cloud.AddressAvailable
	}
	if addr.Bandwidth != nil {
		rec.Bandwidth = *addr.Bandwidth
	}
	if addr.InternetChargeType != nil {
		rec.ChargeType = *addr.InternetChargeType
	}
	return rec
}
