package session

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// authPlainData builds the PLAIN mechanism's initial auth_data: NUL-separated
// (authz='', user, password) (spec §4.3 "Authentication").
func authPlainData(user, password string) []byte {
	return []byte(strings.Join([]string{"", user, password}, "\x00"))
}

// authMySQL41Response computes the bit-for-bit equivalent of the server's
// 41-byte scramble response: sha1(password) XOR sha1(salt||sha1(sha1(password))),
// hex-encoded, then concatenated with (schema, user) NUL-separated, per
// spec §4.3.
func authMySQL41Response(schema, user, password string, salt []byte) []byte {
	hash := mysql41Hash(password, salt)
	return []byte(strings.Join([]string{schema, user, hex.EncodeToString(hash)}, "\x00"))
}

func mysql41Hash(password string, salt []byte) []byte {
	stage1 := sha1Sum([]byte(password))
	stage2 := sha1Sum(stage1)

	mixed := make([]byte, 0, len(salt)+len(stage2))
	mixed = append(mixed, salt...)
	mixed = append(mixed, stage2...)
	stage3 := sha1Sum(mixed)

	out := make([]byte, len(stage1))
	for i := range out {
		out[i] = stage1[i] ^ stage3[i]
	}
	return out
}

func sha1Sum(b []byte) []byte {
	sum := sha1.Sum(b)
	return sum[:]
}
