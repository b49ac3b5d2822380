package memory

import (
	memdb "github.com/hashicorp/go-memdb"

	"github.com/imamik/floatctl/internal/cloud"
)

const (
	addressTable  = "addresses"
	instanceTable = "instances"

	idIndex = "id"
)

// addressRecord is the stored form of an address. Records are never modified
// after insertion; updates insert a copy.
type addressRecord struct {
	AllocationID string
	IP           string
	Status       cloud.AddressStatus
	Region       string
	InstanceID   string
	Bandwidth    int
	ChargeType   string

	// Pending counts list calls left before Target is applied. Negative
	// means the transition never settles.
	Pending int
	Target  cloud.AddressStatus
}

type instanceRecord struct {
	ID     string
	Name   string
	Status cloud.InstanceStatus
	Region string

	Pending int
	Target  cloud.InstanceStatus
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			addressTable: {
				Name: addressTable,
				Indexes: map[string]*memdb.IndexSchema{
					idIndex: {
						Name:    idIndex,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "AllocationID"},
					},
				},
			},
			instanceTable: {
				Name: instanceTable,
				Indexes: map[string]*memdb.IndexSchema{
					idIndex: {
						Name:    idIndex,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
				},
			},
		},
	}
}

func (r *addressRecord) snapshot() cloud.Address {
	addr := cloud.Address{
		AllocationID: r.AllocationID,
		IP:           r.IP,
		Status:       r.Status,
		Region:       r.Region,
		InstanceID:   r.InstanceID,
	}
	if r.Bandwidth > 0 {
		bw := r.Bandwidth
		addr.Bandwidth = &bw
	}
	if r.ChargeType != "" {
		ct := r.ChargeType
		addr.InternetChargeType = &ct
	}
	supports := true
	addr.SupportsUnassociate = &supports
	return addr
}

func (r *instanceRecord) snapshot() cloud.Instance {
	return cloud.Instance{
		ID:     r.ID,
		Name:   r.Name,
		Status: r.Status,
		Region: r.Region,
	}
}
