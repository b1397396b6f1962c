package xmrcrypto

import (
	"crypto/hmac"
	"crypto/subtle"

	"golang.org/x/crypto/sha3"
)

// HMACKeccak computes HMAC-Keccak256(key, msg), used for every hmac_vini /
// hmac_vouti / hmac_rsig / pseudo_out_hmac tag in the protocol.
func HMACKeccak(key, msg []byte) [32]byte {
	mac := hmac.New(sha3.NewLegacyKeccak256, key)
	mac.Write(msg)
	var out [32]byte
	copy(out[:], mac.Sum(nil))
	return out
}

// HMACVerify reports whether tag matches HMAC-Keccak256(key, msg) in
// constant time.
func HMACVerify(key, msg, tag []byte) bool {
	want := HMACKeccak(key, msg)
	return subtle.ConstantTimeCompare(want[:], tag) == 1
}
