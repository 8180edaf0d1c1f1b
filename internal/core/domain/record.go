package domain

import "time"

// DescriptorRecord is the persisted summary of the last descriptor emitted for a module and platform.
type DescriptorRecord struct {
	Module      string    `json:"module,omitzero"`
	Platform    string    `json:"platform,omitzero"`
	Descriptor  string    `json:"descriptor,omitzero"`
	Fingerprint string    `json:"fingerprint,omitzero"`
	Timestamp   time.Time `json:"timestamp,omitzero"`
}

// Key identifies the record inside a store.
func (r DescriptorRecord) Key() string {
	return RecordKey(r.Module, r.Descriptor)
}

// RecordKey builds a store key from a module name and descriptor.
func RecordKey(module, descriptor string) string {
	return module + "/" + descriptor
}
