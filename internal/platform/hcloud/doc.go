// Package hcloud implements cloud.ControlPlane on the Hetzner Cloud API.
//
// Floating IPs play the role of addresses and servers the role of instances:
//
//   - AllocationID is the floating IP ID, Region its home location.
//   - A floating IP assigned to a server is InUse, otherwise Available. While
//     an assign or unassign action issued by this client is still running the
//     address reports Associating or Unassociating.
//   - Server status off maps to Stopped; running, starting and stopping map to
//     their counterparts; anything else is Pending.
//   - StopInstance sends an ACPI shutdown, or a hard poweroff when forced. The
//     charge mode is accepted and ignored since stopped servers stay billed.
//
// Mutating calls are retried while the API reports the resource as locked.
package hcloud
