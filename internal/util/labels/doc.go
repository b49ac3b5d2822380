// Package labels builds the label sets floatctl puts on the resources it
// allocates.
//
// Labels use the floatctl.io domain prefix. Selector terms of the form
// key=value are copied onto new resources so they match the selector that
// found them.
package labels
