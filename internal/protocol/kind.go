package protocol

// Kind identifies the concrete type behind a Message.
type Kind int

const (
	KindGeneric Kind = iota
	KindConnectRequest
	KindConnectResponse
	KindCapabilitiesRequest
	KindCapabilitiesResponse
	KindIdentifyCDRequest
	KindIdentifyCDResponse
	KindGetRequest
	KindSettingsGetResponse
	KindCurrentTempGetResponse
	KindStatusGetResponse
	KindRunStateGetResponse
	KindErrorStateGetResponse
	KindFunctions1GetResponse
	KindFunctions2GetResponse
	KindSettingsSetRequest
	KindRemoteTemperatureSetRequest
	KindSetRunState
	KindSetResponse
	KindThermostatSensorStatus
	KindThermostatHello
	KindThermostatStateUpload
	KindThermostatStateDownloadResponse
	KindThermostatAASetRequest
	KindThermostatABGetResponse
)

var kindNames = [...]string{
	KindGeneric:                         "Packet",
	KindConnectRequest:                  "ConnectRequest",
	KindConnectResponse:                 "ConnectResponse",
	KindCapabilitiesRequest:             "CapabilitiesRequest",
	KindCapabilitiesResponse:            "CapabilitiesResponse",
	KindIdentifyCDRequest:               "IdentifyCDRequest",
	KindIdentifyCDResponse:              "IdentifyCDResponse",
	KindGetRequest:                      "GetRequest",
	KindSettingsGetResponse:             "SettingsGetResponse",
	KindCurrentTempGetResponse:          "CurrentTempGetResponse",
	KindStatusGetResponse:               "StatusGetResponse",
	KindRunStateGetResponse:             "RunStateGetResponse",
	KindErrorStateGetResponse:           "ErrorStateGetResponse",
	KindFunctions1GetResponse:           "Functions1GetResponse",
	KindFunctions2GetResponse:           "Functions2GetResponse",
	KindSettingsSetRequest:              "SettingsSetRequest",
	KindRemoteTemperatureSetRequest:     "RemoteTemperatureSetRequest",
	KindSetRunState:                     "SetRunState",
	KindSetResponse:                     "SetResponse",
	KindThermostatSensorStatus:          "ThermostatSensorStatus",
	KindThermostatHello:                 "ThermostatHello",
	KindThermostatStateUpload:           "ThermostatStateUpload",
	KindThermostatStateDownloadResponse: "ThermostatStateDownloadResponse",
	KindThermostatAASetRequest:          "ThermostatAASetRequest",
	KindThermostatABGetResponse:         "ThermostatABGetResponse",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}
