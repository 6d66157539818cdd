package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix allows changing
// the hashed shape without colliding with earlier hashes.
const (
	DomainRecord = "recgen/record/v1"
	DomainUnit   = "recgen/unit/v1"
	DomainOutput = "recgen/output/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The separator keeps domain and data boundaries unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DeclHash returns the content hash of a record declaration.
func DeclHash(d *RecordDecl) (string, error) {
	canonical, err := MarshalCanonical(d.canonical())
	if err != nil {
		return "", fmt.Errorf("DeclHash %s: %w", d.Name, err)
	}
	return hashWithDomain(DomainRecord, canonical), nil
}

// CanonicalDecl returns the canonical JSON a declaration hash is taken over.
func CanonicalDecl(d *RecordDecl) ([]byte, error) {
	return MarshalCanonical(d.canonical())
}

// OutputHash keys the generated source of one declaration. Generated code
// depends on the declaration, the target package, the resolved identity and
// the compiler version.
func OutputHash(pkg, identity, declHash string) string {
	canonical, _ := MarshalCanonical(IRObject{
		"decl":     IRString(declHash),
		"identity": IRString(identity),
		"package":  IRString(pkg),
		"version":  IRString(CompilerVersion),
	})
	return hashWithDomain(DomainOutput, canonical)
}

// UnitHash returns the hash of a whole compilation unit given its
// declaration hashes in declaration order.
func UnitHash(pkg string, declHashes []string) string {
	arr := make(IRArray, len(declHashes))
	for i, h := range declHashes {
		arr[i] = IRString(h)
	}
	canonical, _ := MarshalCanonical(IRObject{
		"package": IRString(pkg),
		"records": arr,
		"version": IRString(CompilerVersion),
	})
	return hashWithDomain(DomainUnit, canonical)
}

// MustDeclHash is like DeclHash but panics on error.
func MustDeclHash(d *RecordDecl) string {
	h, err := DeclHash(d)
	if err != nil {
		panic(err)
	}
	return h
}
