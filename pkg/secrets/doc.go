// Package secrets protects small sensitive values at rest.
//
// A single 32-byte master key is expanded with HKDF-SHA256 into per-scope
// subkeys. Sealer.Seal and Sealer.Open use AES-256-GCM with the scope bound
// as additional data; Sealer.Digest produces a keyed HMAC suitable for
// looking up low-entropy values (backup codes) without storing them.
//
//	key, _ := secrets.GenerateKey()
//	s, _ := secrets.NewSealer(key)
//	ct, _ := s.Seal(userID.String(), []byte(totpSecret))
//	pt, _ := s.Open(userID.String(), ct)
//
// Derived keys are wiped after each call. Master keys are loaded from
// TWOFACTOR_MASTER_KEY as standard Base64.
package secrets
