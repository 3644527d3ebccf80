package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes.
// Version suffix enables future algorithm migration.
const (
	DomainBoard  = "kanjimerge/board/v1"
	DomainSpec   = "kanjimerge/spec/v1"
	DomainReport = "kanjimerge/report/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// BoardHash computes the content hash of a board snapshot (row 0 first).
// Replay compares these hashes request by request.
func BoardHash(board [][]Symbol) (string, error) {
	canonical, err := MarshalCanonical(board)
	if err != nil {
		return "", fmt.Errorf("BoardHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainBoard, canonical), nil
}

// SpecHash computes the content hash of a game definition.
func SpecHash(spec GameSpec) (string, error) {
	canonical, err := MarshalCanonical(spec)
	if err != nil {
		return "", fmt.Errorf("SpecHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSpec, canonical), nil
}

// ReportHash computes the content hash of a request report.
func ReportHash(r *Report) (string, error) {
	canonical, err := MarshalCanonical(r)
	if err != nil {
		return "", fmt.Errorf("ReportHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainReport, canonical), nil
}

// MustBoardHash is like BoardHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustBoardHash(board [][]Symbol) string {
	h, err := BoardHash(board)
	if err != nil {
		panic(err)
	}
	return h
}
