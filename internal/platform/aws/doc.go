// Package aws implements cloud.ControlPlane on Amazon EC2.
//
// Addresses are VPC Elastic IPs and instances are EC2 instances in the
// client's region. EC2 associates addresses synchronously, so an Elastic IP
// is either Available (no association) or InUse. Stop maps force to Force and
// KeepCharging to Hibernate.
package aws
