// Package onion recognizes Tor hidden-service addresses.
//
// A destination is a hidden service if its hostname ends in ".onion", or if it
// is an IPv6 address in the OnionCat range (fd87:d87e:eb43::/48), which embeds
// the 80-bit identifier of a legacy v2 onion name.
package onion
