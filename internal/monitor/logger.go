package monitor

import (
	"fmt"

	"github.com/muurk/itpctl/internal/logging"
	"github.com/muurk/itpctl/internal/protocol"
	"go.uber.org/zap"
)

// LoggingProcessor logs every packet it is given at info level
type LoggingProcessor struct {
	protocol.BaseProcessor
}

// NewLoggingProcessor returns a processor that logs through internal/logging
func NewLoggingProcessor() *LoggingProcessor {
	return &LoggingProcessor{}
}

func logPacket(msg string, m protocol.Message, fields ...zap.Field) {
	base := m.Base()
	all := append([]zap.Field{
		zap.Uint64("seq", base.Sequence()),
		zap.Stringer("type", base.PacketType()),
		zap.Stringer("src", base.SourceBridge()),
		zap.String("frame", base.Frame().String()),
	}, fields...)
	logging.Info(msg, all...)
}

func hexByte(b byte) string { return fmt.Sprintf("0x%02x", b) }

func (LoggingProcessor) ProcessPacket(p *protocol.Packet) {
	logPacket("Unrecognised packet", p)
}

func (LoggingProcessor) ProcessConnectRequest(p *protocol.ConnectRequestPacket) {
	logPacket("Connect request", p)
}

func (LoggingProcessor) ProcessConnectResponse(p *protocol.ConnectResponsePacket) {
	logPacket("Connect response", p)
}

func (LoggingProcessor) ProcessCapabilitiesRequest(p *protocol.CapabilitiesRequestPacket) {
	logPacket("Capabilities request", p)
}

func (LoggingProcessor) ProcessCapabilitiesResponse(p *protocol.CapabilitiesResponsePacket) {
	logPacket("Capabilities response", p,
		zap.Bool("heat_disabled", p.HeatDisabled()),
		zap.Bool("dry_disabled", p.DryDisabled()),
		zap.Bool("fan_disabled", p.FanDisabled()),
		zap.Bool("supports_vane", p.SupportsVane()),
		zap.Int("fan_speeds", p.SupportedFanSpeeds()),
		zap.Float64("min_cool_dry", p.MinCoolDrySetpoint()),
		zap.Float64("max_cool_dry", p.MaxCoolDrySetpoint()),
		zap.Float64("min_heat", p.MinHeatingSetpoint()),
		zap.Float64("max_heat", p.MaxHeatingSetpoint()),
		zap.Float64("min_auto", p.MinAutoSetpoint()),
		zap.Float64("max_auto", p.MaxAutoSetpoint()),
	)
}

func (LoggingProcessor) ProcessIdentifyCDRequest(p *protocol.IdentifyCDRequestPacket) {
	logPacket("Identify CD request", p)
}

func (LoggingProcessor) ProcessIdentifyCDResponse(p *protocol.IdentifyCDResponsePacket) {
	logPacket("Identify CD response", p)
}

func (LoggingProcessor) ProcessGetRequest(p *protocol.GetRequestPacket) {
	logPacket("Get request", p, zap.Stringer("command", p.RequestedCommand()))
}

func (LoggingProcessor) ProcessSettingsGetResponse(p *protocol.SettingsGetResponsePacket) {
	logPacket("Settings", p,
		zap.String("power", hexByte(p.Power())),
		zap.String("mode", hexByte(p.Mode())),
		zap.String("fan", hexByte(p.Fan())),
		zap.String("vane", hexByte(p.Vane())),
		zap.String("hvane", hexByte(p.HorizontalVane())),
		zap.Float64("target_temp", p.TargetTemp()),
		zap.Bool("isee", p.ISeeEnabled()),
	)
}

func (LoggingProcessor) ProcessCurrentTempGetResponse(p *protocol.CurrentTempGetResponsePacket) {
	logPacket("Current temperature", p,
		zap.Float64("temp", p.CurrentTemp()),
		zap.Float64("outdoor", p.OutdoorTemp()),
		zap.Uint32("runtime_mins", p.RuntimeMinutes()),
	)
}

func (LoggingProcessor) ProcessStatusGetResponse(p *protocol.StatusGetResponsePacket) {
	logPacket("Status", p,
		zap.Uint8("compressor_hz", p.CompressorFrequency()),
		zap.Bool("operating", p.Operating()),
		zap.Uint16("input_watts", p.InputWatts()),
		zap.Float64("lifetime_kwh", p.LifetimeKWh()),
	)
}

func (LoggingProcessor) ProcessRunStateGetResponse(p *protocol.RunStateGetResponsePacket) {
	logPacket("Run state", p,
		zap.Bool("service_filter", p.ServiceFilter()),
		zap.Bool("defrost", p.InDefrost()),
		zap.Bool("preheat", p.InPreheat()),
		zap.Bool("standby", p.InStandby()),
		zap.String("actual_fan", protocol.ActualFanSpeedName(p.ActualFanSpeed())),
		zap.String("auto_mode", hexByte(p.AutoMode())),
	)
}

func (LoggingProcessor) ProcessErrorStateGetResponse(p *protocol.ErrorStateGetResponsePacket) {
	level := logging.Info
	if p.ErrorPresent() {
		level = logging.Warn
	}
	level("Error state",
		zap.Uint64("seq", p.Sequence()),
		zap.Bool("error", p.ErrorPresent()),
		zap.String("code", fmt.Sprintf("0x%04x", p.ErrorCode())),
		zap.String("short_code", p.ShortCode()),
	)
}

func (LoggingProcessor) ProcessFunctions1GetResponse(p *protocol.Functions1GetResponsePacket) {
	logPacket("Functions (part 1)", p, zap.Stringers("functions", p.Functions()))
}

func (LoggingProcessor) ProcessFunctions2GetResponse(p *protocol.Functions2GetResponsePacket) {
	logPacket("Functions (part 2)", p, zap.Stringers("functions", p.Functions()))
}

func (LoggingProcessor) ProcessSettingsSetRequest(p *protocol.SettingsSetRequestPacket) {
	logPacket("Settings set request", p,
		zap.String("flags", fmt.Sprintf("%02x%02x", p.Flags(), p.Flags2())),
		zap.Uint8("power", p.Power()),
		zap.Stringer("mode", p.Mode()),
		zap.Float64("target_temp", p.TargetTemp()),
		zap.Uint8("fan", byte(p.Fan())),
		zap.Uint8("vane", byte(p.Vane())),
		zap.Uint8("hvane", byte(p.HorizontalVane())),
	)
}

func (LoggingProcessor) ProcessRemoteTemperatureSetRequest(p *protocol.RemoteTemperatureSetRequestPacket) {
	logPacket("Remote temperature set request", p,
		zap.Bool("use_internal", p.UseInternalTemperature()),
		zap.Float64("remote_temp", p.RemoteTemperature()),
	)
}

func (LoggingProcessor) ProcessSetRunState(p *protocol.SetRunStatePacket) {
	logPacket("Run state set request", p, zap.Bool("filter_reset", p.FilterReset()))
}

func (LoggingProcessor) ProcessSetResponse(p *protocol.SetResponsePacket) {
	logPacket("Set response", p,
		zap.Bool("successful", p.Successful()),
		zap.String("result", hexByte(p.ResultCode())),
	)
}

func (LoggingProcessor) ProcessThermostatSensorStatus(p *protocol.ThermostatSensorStatusPacket) {
	logPacket("Thermostat sensor status", p,
		zap.Uint8("humidity", p.IndoorHumidityPercent()),
		zap.Stringer("battery", p.BatteryState()),
		zap.Uint8("sensor_flags", p.SensorFlags()),
	)
}

func (LoggingProcessor) ProcessThermostatHello(p *protocol.ThermostatHelloPacket) {
	logPacket("Thermostat hello", p,
		zap.String("model", p.Model()),
		zap.String("serial", p.Serial()),
		zap.String("version", p.Version()),
	)
}

func (LoggingProcessor) ProcessThermostatStateUpload(p *protocol.ThermostatStateUploadPacket) {
	fields := []zap.Field{zap.String("flags", hexByte(p.Flags()))}
	if p.Flags()&protocol.StateUploadFlagTimestamp != 0 {
		fields = append(fields, zap.Stringer("timestamp", p.Timestamp()))
	}
	if p.Flags()&protocol.StateUploadFlagAutoMode != 0 {
		fields = append(fields, zap.Uint8("auto_mode", p.AutoMode()))
	}
	if p.Flags()&protocol.StateUploadFlagHeatSetpoint != 0 {
		fields = append(fields, zap.Float64("heat_setpoint", p.HeatSetpoint()))
	}
	if p.Flags()&protocol.StateUploadFlagCoolSetpoint != 0 {
		fields = append(fields, zap.Float64("cool_setpoint", p.CoolSetpoint()))
	}
	logPacket("Thermostat state upload", p, fields...)
}

func (LoggingProcessor) ProcessThermostatStateDownloadResponse(p *protocol.ThermostatStateDownloadResponsePacket) {
	logPacket("Thermostat state download", p,
		zap.Stringer("timestamp", p.Timestamp()),
		zap.Bool("auto_mode", p.AutoMode()),
		zap.Float64("heat_setpoint", p.HeatSetpoint()),
		zap.Float64("cool_setpoint", p.CoolSetpoint()),
	)
}

func (LoggingProcessor) ProcessThermostatAASetRequest(p *protocol.ThermostatAASetRequestPacket) {
	logPacket("Thermostat AA set request", p)
}

func (LoggingProcessor) ProcessThermostatABGetResponse(p *protocol.ThermostatABGetResponsePacket) {
	logPacket("Thermostat AB get response", p)
}

func (LoggingProcessor) HandleThermostatStateDownloadRequest(p *protocol.GetRequestPacket) {
	logPacket("Thermostat requested state download", p)
}

func (LoggingProcessor) HandleThermostatABGetRequest(p *protocol.GetRequestPacket) {
	logPacket("Thermostat requested AB", p)
}
