package core

import (
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/locknote/pkg/crypto"
)

// ServiceState exposes internal state for observability. It never carries
// key material or note content.
type ServiceState struct {
	Path          string        `json:"path"`
	GatewayType   string        `json:"gateway_type"`
	Gateway       any           `json:"gateway,omitempty"`
	Cipher        crypto.Suite  `json:"cipher"`
	KDF           crypto.Params `json:"kdf"`
	SearchPolicy  SearchPolicy  `json:"search_policy"`
	LastOperation string        `json:"last_operation,omitempty"`
	LastActivity  time.Time     `json:"last_activity,omitzero"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gatewayType := "unknown"
	var gatewayState any
	if s.gateway != nil {
		gatewayType = "gateway"
		if comp, ok := s.gateway.(introspection.Component); ok {
			gatewayType = comp.ComponentType()
		}
		if intro, ok := s.gateway.(introspection.Introspectable); ok {
			gatewayState = intro.State()
		}
	}

	return ServiceState{
		Path:          s.cfg.Path,
		GatewayType:   gatewayType,
		Gateway:       gatewayState,
		Cipher:        s.cfg.Cipher,
		KDF:           s.cfg.KDF,
		SearchPolicy:  s.cfg.SearchPolicy,
		LastOperation: s.lastOp,
		LastActivity:  s.lastTime,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
