// Package aliyun implements cloud.ControlPlane on the Alibaba Cloud ECS and VPC
// APIs.
//
// Addresses are Elastic IP addresses (EIPs), managed through the VPC API, and
// instances are ECS instances.
// Both already use the Available/InUse/Associating/Unassociating and
// Pending/Starting/Running/Stopping/Stopped vocabularies, so statuses map
// one to one. One Client serves one region.
package aliyun
