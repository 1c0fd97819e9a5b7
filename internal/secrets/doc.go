// Package secrets provides the encryption core of gitenc.
//
// # Scope Discovery
//
// Paths to encrypt are declared between marker comments in ignore files
// (.gitignore by default):
//
//	#start:enc
//	.env
//	config/credentials/
//	secret.env*
//	#end:enc
//
// Because the region lives in .gitignore, every declared plaintext path is also
// ignored by git. ParseMarkerLines extracts the entries and ResolveIgnoreFiles
// expands them relative to the directory of the ignore file that declared them:
// literal files, directories (recursively), trailing wildcards (prefix match
// against siblings) and general glob patterns (doublestar).
//
// # Envelope Format
//
// Each plaintext file has a counterpart at <path>.enc containing
//
//	<base64 ciphertext>#<base64 iv>#<base64 HMAC-SHA256(key, ciphertext#iv)>
//
// ParseEnvelope recomputes the tag on every read. A mismatch marks the envelope
// invalid; a wrong number of fields is ErrMalformedEnvelope.
//
// # Stable IVs
//
// Files are encrypted with AES-256-CBC. The IV of an existing counterpart is
// reused when a file is re-encrypted, so unchanged content produces a
// byte-identical envelope and version control shows no diff. The IV is read
// even from an envelope whose tag does not verify: reuse only serves
// determinism, and the tag is checked again before any decryption.
//
// # Key Storage
//
// The repository key is 32 random bytes, base64 encoded, stored in
// .git/secrets/key. It is never committed and never replaced without
// confirmation (KeyStore.SafeStore).
package secrets
