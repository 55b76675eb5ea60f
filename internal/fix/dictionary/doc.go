// Package dictionary is the compile-time FIX 4.2 field table.
//
// The tables in this package are generated from the QuickFIX FIX42.xml data
// dictionary: tag number to symbolic field name, wire type, admin/application
// message classification, and the length-tag pairing for DATA fields. The
// generator is not part of this module (schema -> table is a one-time,
// offline step, the same way the teacher's NFSv4 constants are transcribed
// from RFC 7530/7531); this package holds only the resulting pure tables and
// is read-only for the lifetime of the process.
package dictionary
