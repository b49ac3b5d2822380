package aliyun

import (
	"sync"

	ecs "github.com/alibabacloud-go/ecs-20140526/v4/client"
	vpc "github.com/alibabacloud-go/vpc-20160428/v6/client"
)

// requestLog records every request a fake receives.
type requestLog struct {
	mu       sync.Mutex
	requests []any
}

func (l *requestLog) record(req any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.requests = append(l.requests, req)
}

func (l *requestLog) recorded() []any {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]any(nil), l.requests...)
}

// mockECS is a function-field fake of the ECS SDK. Unset functions return
// empty successful responses.
type mockECS struct {
	requestLog

	DescribeInstancesFunc func(*ecs.DescribeInstancesRequest) (*ecs.DescribeInstancesResponse, error)
	StopInstanceFunc      func(*ecs.StopInstanceRequest) (*ecs.StopInstanceResponse, error)
	StartInstanceFunc     func(*ecs.StartInstanceRequest) (*ecs.StartInstanceResponse, error)
}

func (m *mockECS) DescribeInstances(req *ecs.DescribeInstancesRequest) (*ecs.DescribeInstancesResponse, error) {
	cp := *req
	m.record(&cp)
	if m.DescribeInstancesFunc != nil {
		return m.DescribeInstancesFunc(req)
	}
	return &ecs.DescribeInstancesResponse{}, nil
}

func (m *mockECS) StopInstance(req *ecs.StopInstanceRequest) (*ecs.StopInstanceResponse, error) {
	m.record(req)
	if m.StopInstanceFunc != nil {
		return m.StopInstanceFunc(req)
	}
	return &ecs.StopInstanceResponse{}, nil
}

func (m *mockECS) StartInstance(req *ecs.StartInstanceRequest) (*ecs.StartInstanceResponse, error) {
	m.record(req)
	if m.StartInstanceFunc != nil {
		return m.StartInstanceFunc(req)
	}
	return &ecs.StartInstanceResponse{}, nil
}

// mockVPC is a function-field fake of the VPC SDK's EIP calls.
type mockVPC struct {
	requestLog

	DescribeEipAddressesFunc  func(*vpc.DescribeEipAddressesRequest) (*vpc.DescribeEipAddressesResponse, error)
	AssociateEipAddressFunc   func(*vpc.AssociateEipAddressRequest) (*vpc.AssociateEipAddressResponse, error)
	UnassociateEipAddressFunc func(*vpc.UnassociateEipAddressRequest) (*vpc.UnassociateEipAddressResponse, error)
	AllocateEipAddressFunc    func(*vpc.AllocateEipAddressRequest) (*vpc.AllocateEipAddressResponse, error)
	ReleaseEipAddressFunc     func(*vpc.ReleaseEipAddressRequest) (*vpc.ReleaseEipAddressResponse, error)
}

func (m *mockVPC) DescribeEipAddresses(req *vpc.DescribeEipAddressesRequest) (*vpc.DescribeEipAddressesResponse, error) {
	cp := *req
	m.record(&cp)
	if m.DescribeEipAddressesFunc != nil {
		return m.DescribeEipAddressesFunc(req)
	}
	return &vpc.DescribeEipAddressesResponse{}, nil
}

func (m *mockVPC) AssociateEipAddress(req *vpc.AssociateEipAddressRequest) (*vpc.AssociateEipAddressResponse, error) {
	m.record(req)
	if m.AssociateEipAddressFunc != nil {
		return m.AssociateEipAddressFunc(req)
	}
	return &vpc.AssociateEipAddressResponse{}, nil
}

func (m *mockVPC) UnassociateEipAddress(req *vpc.UnassociateEipAddressRequest) (*vpc.UnassociateEipAddressResponse, error) {
	m.record(req)
	if m.UnassociateEipAddressFunc != nil {
		return m.UnassociateEipAddressFunc(req)
	}
	return &vpc.UnassociateEipAddressResponse{}, nil
}

func (m *mockVPC) AllocateEipAddress(req *vpc.AllocateEipAddressRequest) (*vpc.AllocateEipAddressResponse, error) {
	m.record(req)
	if m.AllocateEipAddressFunc != nil {
		return m.AllocateEipAddressFunc(req)
	}
	return &vpc.AllocateEipAddressResponse{}, nil
}

func (m *mockVPC) ReleaseEipAddress(req *vpc.ReleaseEipAddressRequest) (*vpc.ReleaseEipAddressResponse, error) {
	m.record(req)
	if m.ReleaseEipAddressFunc != nil {
		return m.ReleaseEipAddressFunc(req)
	}
	return &vpc.ReleaseEipAddressResponse{}, nil
}
