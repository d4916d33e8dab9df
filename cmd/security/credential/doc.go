// Package credential turns account passwords into stored digests and verifies them.
//
// Two codecs are provided:
// - SHA256Codec: deterministic, unsalted SHA-256 hex digest (64 chars). It is the default
//   so digests stay compatible with rows written by earlier deployments.
// - Argon2idCodec: salted Argon2id in a PHC-like encoded string. It also verifies legacy
//   SHA-256 digests, so switching codecs does not lock existing accounts out.
//
// All comparisons run in constant time. Digests are treated as untrusted input on Verify.
package credential
