package domain

import (
	"net/netip"
	"sync"

	"go4.org/netipx"
)

type Scope string

const (
	ScopePublic        Scope = "public"
	ScopePrivate       Scope = "private"
	ScopeShared        Scope = "shared"
	ScopeLoopback      Scope = "loopback"
	ScopeLinkLocal     Scope = "link-local"
	ScopeDocumentation Scope = "documentation"
	ScopeInvalid       Scope = "invalid"
)

// AddressInfo describes an address reported by the lookup endpoint. It is
// informational only and never changes what is displayed.
type AddressInfo struct {
	Version string
	Scope   Scope
}

var scopePrefixes = []struct {
	scope    Scope
	prefixes []string
}{
	{ScopeLoopback, []string{"127.0.0.0/8", "::1/128"}},
	{ScopeLinkLocal, []string{"169.254.0.0/16", "fe80::/10"}},
	{ScopePrivate, []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "fc00::/7"}},
	{ScopeShared, []string{"100.64.0.0/10"}},
	{ScopeDocumentation, []string{"192.0.2.0/24", "198.51.100.0/24", "203.0.113.0/24", "2001:db8::/32"}},
}

type scopeSet struct {
	scope Scope
	set   *netipx.IPSet
}

var scopeSets = sync.OnceValue(func() []scopeSet {
	sets := make([]scopeSet, 0, len(scopePrefixes))
	for _, sp := range scopePrefixes {
		var b netipx.IPSetBuilder
		for _, p := range sp.prefixes {
			b.AddPrefix(netip.MustParsePrefix(p))
		}
		set, err := b.IPSet()
		if err != nil {
			panic(err)
		}
		sets = append(sets, scopeSet{scope: sp.scope, set: set})
	}
	return sets
})

func Classify(raw string) AddressInfo {
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return AddressInfo{Version: "unknown", Scope: ScopeInvalid}
	}
	addr = addr.Unmap()

	info := AddressInfo{Version: "ipv6", Scope: ScopePublic}
	if addr.Is4() {
		info.Version = "ipv4"
	}

	for _, s := range scopeSets() {
		if s.set.Contains(addr) {
			info.Scope = s.scope
			break
		}
	}
	return info
}
