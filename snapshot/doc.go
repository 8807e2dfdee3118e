// Package snapshot persists clustering results and record sets as
// self-describing binary blobs.
//
// Every snapshot starts with a header naming its format version, payload
// codec and compression, followed by a CRC32 of the stored payload:
//
//	magic "SCL1" | version u16 | codec name len u8 | codec name |
//	compression u8 | crc32 u32 | payload block
//
// A snapshot written with any codec or compression can be loaded without
// extra configuration.
package snapshot
