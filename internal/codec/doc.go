// Package codec converts physical quantities to and from the byte encodings
// used on the heat-pump serial bus.
//
// # Temperature Scales
//
// The bus carries temperatures in four incompatible encodings:
//
//   - Scale A ("enhanced"): wire = round(v*2) + 128, 0.5 degree resolution.
//     A zero byte means the unit does not populate the field.
//   - Legacy target temperature: low nibble = 31 - floor(v), high nibble set
//     for a half degree. Only 16 to 31.5 degrees are representable.
//   - Legacy heat-pump room temperature: wire = v - 10.
//   - Legacy thermostat room temperature: wire = 2v - 16.
//
// Fields that exist in both generations are written to two offsets. Readers
// try scale A first and only fall back to the legacy byte when scale A reads 0.
//
// Encoders never fail. Values outside a scale's span are clamped to the
// scale's sentinel codes and a warning is logged.
//
// # Packed Text
//
// Thermostat model and serial strings are packed six bits per character,
// most significant bit first. Codes 0x00-0x1F map to 0x40-0x5F ('@'..'_').
package codec
