package labels

import "strings"

// KeyManagedBy identifies the management system.
const KeyManagedBy = "floatctl.io/managed-by"

// ManagedByFloatctl is the KeyManagedBy value of floatctl-allocated resources.
const ManagedByFloatctl = "floatctl"

// LabelBuilder provides a fluent interface for building resource labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new label builder with the managed-by label set.
func NewLabelBuilder() *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyManagedBy: ManagedByFloatctl,
		},
	}
}

// WithSelector adds the key=value terms of a label selector such as
// "floatctl=pool,env=prod". Terms without a value are skipped, as are
// negations like "env!=prod".
func (lb *LabelBuilder) WithSelector(selector string) *LabelBuilder {
	return lb.Merge(FromSelector(selector))
}

// Merge adds all labels from the provided map.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	for k, v := range extra {
		lb.labels[k] = v
	}
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

// FromSelector returns the key=value terms of selector, or nil when it has
// none.
func FromSelector(selector string) map[string]string {
	labels := map[string]string{}
	for _, term := range strings.Split(selector, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(term), "=")
		if !ok || key == "" || strings.HasSuffix(key, "!") {
			continue
		}
		labels[key] = value
	}
	if len(labels) == 0 {
		return nil
	}
	return labels
}
