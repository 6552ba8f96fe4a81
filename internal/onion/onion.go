package onion

import (
	"encoding/base32"
	"net/netip"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Suffix is the top-level domain reserved for hidden services.
const Suffix = ".onion"

const (
	v3Length  = 56
	v3Version = 0x03
)

// onionCatPrefix is fd87:d87e:eb43::/48.
var onionCatPrefix = netip.PrefixFrom(netip.AddrFrom16([16]byte{0xfd, 0x87, 0xd8, 0x7e, 0xeb, 0x43}), 48)

// Tor uses lowercase RFC 4648 base32 without padding.
var encoding = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

var checksumPrefix = []byte(".onion checksum")

// IsHiddenService reports whether host is a .onion name. The comparison is
// case-insensitive and ignores a trailing root dot.
func IsHiddenService(host string) bool {
	host = strings.TrimSuffix(host, ".")
	return len(host) > len(Suffix) && strings.EqualFold(host[len(host)-len(Suffix):], Suffix)
}

// IsOnionCat reports whether addr lies in the OnionCat range.
func IsOnionCat(addr netip.Addr) bool {
	return addr.Is6() && onionCatPrefix.Contains(addr)
}

// FromOnionCat returns the onion hostname embedded in an OnionCat address.
func FromOnionCat(addr netip.Addr) (string, bool) {
	if !IsOnionCat(addr) {
		return "", false
	}
	b := addr.As16()
	return encoding.EncodeToString(b[6:]) + Suffix, true
}

// IsValidV3 reports whether host is a well-formed v3 onion name: 56 base32
// characters that decode to an ed25519 key, a matching checksum and version 3.
func IsValidV3(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	id, ok := strings.CutSuffix(host, Suffix)
	if !ok || len(id) != v3Length {
		return false
	}
	raw, err := encoding.DecodeString(id)
	if err != nil || len(raw) != 35 {
		return false
	}
	pubkey, checksum, version := raw[:32], raw[32:34], raw[34]
	if version != v3Version {
		return false
	}
	want := v3Checksum(pubkey, version)
	return checksum[0] == want[0] && checksum[1] == want[1]
}

// v3Checksum is the first two bytes of SHA3-256(".onion checksum" || pubkey || version).
func v3Checksum(pubkey []byte, version byte) []byte {
	data := make([]byte, 0, len(checksumPrefix)+len(pubkey)+1)
	data = append(data, checksumPrefix...)
	data = append(data, pubkey...)
	data = append(data, version)
	sum := sha3.Sum256(data)
	return sum[:2]
}
