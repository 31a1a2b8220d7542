// Package subnet implements allocation and teardown of loopback-alias
// (BSD) or dummy-interface (Linux) subnets within 10.0.0.0/8, plus the
// HTTP facade that exposes the manager to operators.
package subnet

import (
	"fmt"
	"net"
)

// AllowedNetwork is the only range subnets may be carved from.
var AllowedNetwork = mustParseCIDR("10.0.0.0/8")

// ProtectedNetworks must never overlap a requested subnet.
var ProtectedNetworks = []*net.IPNet{
	mustParseCIDR("127.0.0.0/8"),
	mustParseCIDR("169.254.0.0/16"),
}

func mustParseCIDR(s string) *net.IPNet {
	_, n, err := net.ParseCIDR(s)
	if err != nil {
		panic(fmt.Sprintf("subnet: invalid constant CIDR %q: %v", s, err))
	}
	return n
}

// ValidateNetwork reports whether cidr is fully contained in
// AllowedNetwork and does not overlap any ProtectedNetworks.
//
// The overlap test compares both ends of each range, not only the
// network address of the requested subnet against the protected ranges:
// a request such as 126.0.0.0/7, whose network address lies outside
// 127.0.0.0/8 but whose range covers it, counts as overlapping.
func ValidateNetwork(cidr *net.IPNet) error {
	if !networkContains(AllowedNetwork, cidr) {
		return fmt.Errorf("validate network: %s is not within the allowed range %s", cidr, AllowedNetwork)
	}
	for _, protected := range ProtectedNetworks {
		if networksOverlap(cidr, protected) {
			return fmt.Errorf("validate network: %s overlaps protected range %s", cidr, protected)
		}
	}
	return nil
}

// networkContains reports whether every address in inner falls within outer.
func networkContains(outer, inner *net.IPNet) bool {
	innerOnes, innerBits := inner.Mask.Size()
	outerOnes, outerBits := outer.Mask.Size()
	if innerBits != outerBits {
		return false
	}
	if innerOnes < outerOnes {
		// inner is a larger range than outer; it cannot be contained.
		return false
	}
	return outer.Contains(inner.IP) && outer.Contains(lastAddress(inner))
}

// networksOverlap reports whether a and b's address ranges intersect at
// all, regardless of which contains the other.
func networksOverlap(a, b *net.IPNet) bool {
	return a.Contains(b.IP) || b.Contains(a.IP) || a.Contains(lastAddress(b)) || b.Contains(lastAddress(a))
}

// lastAddress returns the broadcast/last address of n.
func lastAddress(n *net.IPNet) net.IP {
	ip := n.IP.To4()
	if ip == nil {
		ip = n.IP.To16()
	}
	last := make(net.IP, len(ip))
	for i := range ip {
		last[i] = ip[i] | ^n.Mask[i]
	}
	return last
}
