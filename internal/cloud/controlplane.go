package cloud

import "context"

// ControlPlane issues calls against a cloud provider. All calls are
// synchronous request/response and none of them guarantee that the targeted
// resource has converged by the time they return.
type ControlPlane interface {
	ListInstances(ctx context.Context, filter InstanceFilter) ([]Instance, error)
	ListAddresses(ctx context.Context, filter AddressFilter) ([]Address, error)

	AssociateAddress(ctx context.Context, instanceID, allocationID, region string) error
	UnassociateAddress(ctx context.Context, instanceID, allocationID, region string) error

	// AllocateAddress must return an Address with both AllocationID and IP
	// populated, or an error.
	AllocateAddress(ctx context.Context, cfg AllocationConfig) (Address, error)
	ReleaseAddress(ctx context.Context, allocationID string) error

	StopInstance(ctx context.Context, instanceID string, mode ChargeMode, force bool) error
	StartInstance(ctx context.Context, instanceID string) error
}
