// Package wire frames, parses, checksums, and serializes FIX 4.2 messages
// (spec.md §4.2).
//
// FIX messages are SOH-delimited tag=value pairs. This package provides:
//   - Framer: reads a byte stream and slices off complete messages.
//   - Parse: turns a complete frame into a Message that supports
//     tag-indexed field access without copying field values.
//   - Serialize: the inverse -- given an Envelope with ordered body fields,
//     produces header, BodyLength, CheckSum, and trailer.
//
// Field values are held as slices into the original byte buffer; typed
// decoding is deferred to the caller (lazy parsing, matching the "minimal
// allocation on the hot path" goal in spec.md §9 and the teacher's XDR
// codec's preference for io.Reader-driven decoding over eager copies).
package wire

const soh = 0x01
