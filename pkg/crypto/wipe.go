package crypto

import (
	"fmt"
	"runtime"
)

// MasterKey holds derived key material. It must be wiped when no longer needed;
// callers acquire it right before use and `defer key.Wipe()`.
type MasterKey struct {
	b []byte
}

// NewMasterKey copies raw into a MasterKey. raw is not modified.
func NewMasterKey(raw []byte) (*MasterKey, error) {
	if len(raw) != KeySize {
		return nil, fmt.Errorf("master key must be %d bytes, got %d", KeySize, len(raw))
	}
	b := make([]byte, KeySize)
	copy(b, raw)
	return &MasterKey{b: b}, nil
}

// Bytes exposes the key material. The slice is invalid after Wipe.
func (k *MasterKey) Bytes() []byte {
	if k == nil {
		return nil
	}
	return k.b
}

// Wiped reports whether the key has been destroyed.
func (k *MasterKey) Wiped() bool {
	return k == nil || k.b == nil
}

// Wipe zeroes the key material. Safe to call more than once and on nil.
func (k *MasterKey) Wipe() {
	if k == nil || k.b == nil {
		return
	}
	Wipe(k.b)
	k.b = nil
}

// String never prints key material.
func (k *MasterKey) String() string {
	return "MasterKey(redacted)"
}

// Wipe overwrites b with zeros.
func Wipe(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
}
