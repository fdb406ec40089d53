package state

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSnapshot = "uisync/snapshot/v1"
	DomainEffect   = "uisync/effect/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SnapshotDigest returns the content hash of a snapshot.
// Equal snapshots always produce equal digests.
func SnapshotDigest(s Snapshot) (string, error) {
	data, err := MarshalCanonical(SnapshotValue(s))
	if err != nil {
		return "", fmt.Errorf("snapshot digest: %w", err)
	}
	return hashWithDomain(DomainSnapshot, data), nil
}

// EffectID computes the content-addressed ID of an effect planned for a
// transition. The same session, transition, position and effect always
// yield the same ID, which makes journal writes idempotent.
func EffectID(session string, pairSeq int64, ordinal int, e Effect) (string, error) {
	data, err := MarshalCanonical(map[string]any{
		"session":  session,
		"pair_seq": pairSeq,
		"category": string(e.Category()),
		"ordinal":  ordinal,
		"effect":   EffectValue(e),
	})
	if err != nil {
		return "", fmt.Errorf("effect id: %w", err)
	}
	return hashWithDomain(DomainEffect, data), nil
}

// MustEffectID is EffectID for inputs known to be canonical. Panics on error.
func MustEffectID(session string, pairSeq int64, ordinal int, e Effect) string {
	id, err := EffectID(session, pairSeq, ordinal, e)
	if err != nil {
		panic(err)
	}
	return id
}
