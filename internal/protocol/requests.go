package protocol

import "sync"

// Shared request instances. Each is built once on first use and must not be
// modified by callers; build a fresh packet when a variant is needed.
var (
	connectRequest      = sync.OnceValue(newConnectRequestPacket)
	capabilitiesRequest = sync.OnceValue(newCapabilitiesRequestPacket)
	identifyCDRequest   = sync.OnceValue(newIdentifyCDRequestPacket)

	getSettingsRequest    = sync.OnceValue(func() *GetRequestPacket { return NewGetRequestPacket(GetSettings) })
	getCurrentTempRequest = sync.OnceValue(func() *GetRequestPacket { return NewGetRequestPacket(GetCurrentTemp) })
	getStatusRequest      = sync.OnceValue(func() *GetRequestPacket { return NewGetRequestPacket(GetStatus) })
	getRunStateRequest    = sync.OnceValue(func() *GetRequestPacket { return NewGetRequestPacket(GetRunState) })
	getErrorInfoRequest   = sync.OnceValue(func() *GetRequestPacket { return NewGetRequestPacket(GetErrorInfo) })
	getFunctions1Request  = sync.OnceValue(func() *GetRequestPacket { return NewGetRequestPacket(GetFunctions1) })
	getFunctions2Request  = sync.OnceValue(func() *GetRequestPacket { return NewGetRequestPacket(GetFunctions2) })
)

// ConnectRequest returns the shared connect request (payload CA 01)
func ConnectRequest() *ConnectRequestPacket { return connectRequest() }

// CapabilitiesRequest returns the shared identify request for base capabilities
func CapabilitiesRequest() *CapabilitiesRequestPacket { return capabilitiesRequest() }

// IdentifyCDRequest returns the shared CD identify request
func IdentifyCDRequest() *IdentifyCDRequestPacket { return identifyCDRequest() }

// GetSettingsRequest asks for power, mode, setpoint, fan and vanes
func GetSettingsRequest() *GetRequestPacket { return getSettingsRequest() }

// GetCurrentTempRequest asks for room and outdoor temperature
func GetCurrentTempRequest() *GetRequestPacket { return getCurrentTempRequest() }
func GetStatusRequest() *GetRequestPacket      { return getStatusRequest() }
func GetRunStateRequest() *GetRequestPacket    { return getRunStateRequest() }

// GetErrorInfoRequest asks for the active fault code
func GetErrorInfoRequest() *GetRequestPacket { return getErrorInfoRequest() }

// GetFunctions1Request and GetFunctions2Request read the installer function pages
func GetFunctions1Request() *GetRequestPacket { return getFunctions1Request() }
func GetFunctions2Request() *GetRequestPacket { return getFunctions2Request() }
