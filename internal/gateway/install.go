package gateway

import "sync"

var (
	installOnce    sync.Once
	defaultGateway *Gateway
)

// Install publishes g as the process-wide gateway. Only the first call takes
// effect; later calls are no-ops that return the already-installed instance.
// Installing twice must never double-wrap the transport, since that would
// make a single 401 trigger repeated refresh-and-retry cycles.
func Install(g *Gateway) *Gateway {
	installOnce.Do(func() {
		defaultGateway = g
	})
	return defaultGateway
}

// Default returns the installed gateway, or nil before Install has been called.
func Default() *Gateway {
	return defaultGateway
}
