// Package pii stores sensitive personal identifiers as ciphertext plus a lookup hash.
//
// Every sensitive attribute occupies two columns: a text column holding an AEAD token
// (or, for rows written before encryption existed, the plaintext itself) and a fixed
// length hash column holding the SHA-256 digest of the normalized value. The Protector
// is the only component that reads or writes those columns. Business code sees the
// decrypted domain value and must treat "" as "attribute absent".
//
// Exact-match questions ("is this passport number already registered?") are answered
// by Protector.Lookup and a query on the hash column, never by decrypting rows.
package pii
