// Package cloud defines the resource model shared by every control plane
// backend: floating addresses, compute instances, their status enums and the
// ControlPlane contract the orchestrator drives.
//
// Snapshots returned by a ControlPlane are immutable values. They are fetched
// fresh for every decision and never cached; a mutation is only ever observed
// by querying again.
package cloud
