package protocol

// Processor receives decoded packets from Dispatch. Embed BaseProcessor to
// pick up no-op implementations and override only the kinds of interest.
type Processor interface {
	ProcessPacket(*Packet)
	ProcessConnectRequest(*ConnectRequestPacket)
	ProcessConnectResponse(*ConnectResponsePacket)
	ProcessCapabilitiesRequest(*CapabilitiesRequestPacket)
	ProcessCapabilitiesResponse(*CapabilitiesResponsePacket)
	ProcessIdentifyCDRequest(*IdentifyCDRequestPacket)
	ProcessIdentifyCDResponse(*IdentifyCDResponsePacket)
	ProcessGetRequest(*GetRequestPacket)
	ProcessSettingsGetResponse(*SettingsGetResponsePacket)
	ProcessCurrentTempGetResponse(*CurrentTempGetResponsePacket)
	ProcessStatusGetResponse(*StatusGetResponsePacket)
	ProcessRunStateGetResponse(*RunStateGetResponsePacket)
	ProcessErrorStateGetResponse(*ErrorStateGetResponsePacket)
	ProcessFunctions1GetResponse(*Functions1GetResponsePacket)
	ProcessFunctions2GetResponse(*Functions2GetResponsePacket)
	ProcessSettingsSetRequest(*SettingsSetRequestPacket)
	ProcessRemoteTemperatureSetRequest(*RemoteTemperatureSetRequestPacket)
	ProcessSetRunState(*SetRunStatePacket)
	ProcessSetResponse(*SetResponsePacket)
	ProcessThermostatSensorStatus(*ThermostatSensorStatusPacket)
	ProcessThermostatHello(*ThermostatHelloPacket)
	ProcessThermostatStateUpload(*ThermostatStateUploadPacket)
	ProcessThermostatStateDownloadResponse(*ThermostatStateDownloadResponsePacket)
	ProcessThermostatAASetRequest(*ThermostatAASetRequestPacket)
	ProcessThermostatABGetResponse(*ThermostatABGetResponsePacket)

	// Get requests the thermostat sends for state the bridge must answer
	HandleThermostatStateDownloadRequest(*GetRequestPacket)
	HandleThermostatABGetRequest(*GetRequestPacket)
}

// BaseProcessor ignores every packet
type BaseProcessor struct{}

func (BaseProcessor) ProcessPacket(*Packet)                                                         {}
func (BaseProcessor) ProcessConnectRequest(*ConnectRequestPacket)                                   {}
func (BaseProcessor) ProcessConnectResponse(*ConnectResponsePacket)                                 {}
func (BaseProcessor) ProcessCapabilitiesRequest(*CapabilitiesRequestPacket)                         {}
func (BaseProcessor) ProcessCapabilitiesResponse(*CapabilitiesResponsePacket)                       {}
func (BaseProcessor) ProcessIdentifyCDRequest(*IdentifyCDRequestPacket)                             {}
func (BaseProcessor) ProcessIdentifyCDResponse(*IdentifyCDResponsePacket)                           {}
func (BaseProcessor) ProcessGetRequest(*GetRequestPacket)                                           {}
func (BaseProcessor) ProcessSettingsGetResponse(*SettingsGetResponsePacket)                         {}
func (BaseProcessor) ProcessCurrentTempGetResponse(*CurrentTempGetResponsePacket)                   {}
func (BaseProcessor) ProcessStatusGetResponse(*StatusGetResponsePacket)                             {}
func (BaseProcessor) ProcessRunStateGetResponse(*RunStateGetResponsePacket)                         {}
func (BaseProcessor) ProcessErrorStateGetResponse(*ErrorStateGetResponsePacket)                     {}
func (BaseProcessor) ProcessFunctions1GetResponse(*Functions1GetResponsePacket)                     {}
func (BaseProcessor) ProcessFunctions2GetResponse(*Functions2GetResponsePacket)                     {}
func (BaseProcessor) ProcessSettingsSetRequest(*SettingsSetRequestPacket)                           {}
func (BaseProcessor) ProcessRemoteTemperatureSetRequest(*RemoteTemperatureSetRequestPacket)         {}
func (BaseProcessor) ProcessSetRunState(*SetRunStatePacket)                                         {}
func (BaseProcessor) ProcessSetResponse(*SetResponsePacket)                                         {}
func (BaseProcessor) ProcessThermostatSensorStatus(*ThermostatSensorStatusPacket)                   {}
func (BaseProcessor) ProcessThermostatHello(*ThermostatHelloPacket)                                 {}
func (BaseProcessor) ProcessThermostatStateUpload(*ThermostatStateUploadPacket)                     {}
func (BaseProcessor) ProcessThermostatStateDownloadResponse(*ThermostatStateDownloadResponsePacket) {}
func (BaseProcessor) ProcessThermostatAASetRequest(*ThermostatAASetRequestPacket)                   {}
func (BaseProcessor) ProcessThermostatABGetResponse(*ThermostatABGetResponsePacket)                 {}
func (BaseProcessor) HandleThermostatStateDownloadRequest(*GetRequestPacket)                        {}
func (BaseProcessor) HandleThermostatABGetRequest(*GetRequestPacket)                                {}

// Dispatch calls exactly one Processor method, the one matching m's concrete
// kind. Get requests for thermostat state (A9 and AB) go to their Handle
// method instead of ProcessGetRequest.
func Dispatch(p Processor, m Message) {
	switch pkt := m.(type) {
	case *ConnectRequestPacket:
		p.ProcessConnectRequest(pkt)
	case *ConnectResponsePacket:
		p.ProcessConnectResponse(pkt)
	case *CapabilitiesRequestPacket:
		p.ProcessCapabilitiesRequest(pkt)
	case *CapabilitiesResponsePacket:
		p.ProcessCapabilitiesResponse(pkt)
	case *IdentifyCDRequestPacket:
		p.ProcessIdentifyCDRequest(pkt)
	case *IdentifyCDResponsePacket:
		p.ProcessIdentifyCDResponse(pkt)
	case *GetRequestPacket:
		switch pkt.RequestedCommand() {
		case GetThermostatStateDownload:
			p.HandleThermostatStateDownloadRequest(pkt)
		case GetThermostatAB:
			p.HandleThermostatABGetRequest(pkt)
		default:
			p.ProcessGetRequest(pkt)
		}
	case *SettingsGetResponsePacket:
		p.ProcessSettingsGetResponse(pkt)
	case *CurrentTempGetResponsePacket:
		p.ProcessCurrentTempGetResponse(pkt)
	case *StatusGetResponsePacket:
		p.ProcessStatusGetResponse(pkt)
	case *RunStateGetResponsePacket:
		p.ProcessRunStateGetResponse(pkt)
	case *ErrorStateGetResponsePacket:
		p.ProcessErrorStateGetResponse(pkt)
	case *Functions1GetResponsePacket:
		p.ProcessFunctions1GetResponse(pkt)
	case *Functions2GetResponsePacket:
		p.ProcessFunctions2GetResponse(pkt)
	case *SettingsSetRequestPacket:
		p.ProcessSettingsSetRequest(pkt)
	case *RemoteTemperatureSetRequestPacket:
		p.ProcessRemoteTemperatureSetRequest(pkt)
	case *SetRunStatePacket:
		p.ProcessSetRunState(pkt)
	case *SetResponsePacket:
		p.ProcessSetResponse(pkt)
	case *ThermostatSensorStatusPacket:
		p.ProcessThermostatSensorStatus(pkt)
	case *ThermostatHelloPacket:
		p.ProcessThermostatHello(pkt)
	case *ThermostatStateUploadPacket:
		p.ProcessThermostatStateUpload(pkt)
	case *ThermostatStateDownloadResponsePacket:
		p.ProcessThermostatStateDownloadResponse(pkt)
	case *ThermostatAASetRequestPacket:
		p.ProcessThermostatAASetRequest(pkt)
	case *ThermostatABGetResponsePacket:
		p.ProcessThermostatABGetResponse(pkt)
	case *Packet:
		p.ProcessPacket(pkt)
	}
}
