package util

import (
	"crypto/md5"

	"github.com/google/uuid"
)

// OfflineUUID derives the stable player UUID that offline-mode servers
// assign to a username: an MD5 of "OfflinePlayer:<name>" with the
// version-3 and RFC 4122 variant bits forced, matching the vanilla
// server's derivation so the identity agrees on both ends.
func OfflineUUID(name string) uuid.UUID {
	sum := md5.Sum([]byte("OfflinePlayer:" + name))
	sum[6] = sum[6]&0x0f | 0x30 // version 3
	sum[8] = sum[8]&0x3f | 0x80 // RFC 4122 variant
	id, _ := uuid.FromBytes(sum[:])
	return id
}
