package xip

import (
	"net/netip"

	"go4.org/netipx"
)

// RangeType 是区间的 IANA 特殊用途分类。
// 分类作用于整个区间：区间完整落入某个特殊用途块时取该块的分类，
// 横跨多个分类时为 TypeMixed，不与任何特殊用途块相交时为 TypePublic。
type RangeType uint8

const (
	// TypeMixed 表示区间横跨多个分类。
	TypeMixed RangeType = iota
	// TypePublic 表示公网（全局可路由）地址。
	TypePublic
	// TypeUnspecified 表示未指定地址：0.0.0.0/32 与 ::/128。
	TypeUnspecified
	// TypeThisNetwork 表示"本网络"源地址块：0.0.0.0/8。
	TypeThisNetwork
	// TypePrivate 表示私有地址：RFC 1918 三段与 fc00::/7（ULA）。
	TypePrivate
	// TypeShared 表示运营商级 NAT 共享地址：100.64.0.0/10。
	TypeShared
	// TypeLoopback 表示环回地址：127.0.0.0/8 与 ::1/128。
	TypeLoopback
	// TypeLinkLocal 表示链路本地地址：169.254.0.0/16 与 fe80::/10。
	TypeLinkLocal
	// TypeDocumentation 表示文档示例地址：TEST-NET-1/2/3 与 2001:db8::/32。
	TypeDocumentation
	// TypeBenchmark 表示基准测试地址：198.18.0.0/15 与 2001:2::/48。
	TypeBenchmark
	// TypeMulticast 表示组播地址：224.0.0.0/4 与 ff00::/8。
	TypeMulticast
	// TypeBroadcast 表示 IPv4 有限广播地址：255.255.255.255/32。
	TypeBroadcast
	// TypeReserved 表示保留地址：240.0.0.0/4。
	TypeReserved
)

// String 返回分类的字符串标签。
func (t RangeType) String() string {
	switch t {
	case TypeMixed:
		return "mixed"
	case TypePublic:
		return "public"
	case TypeUnspecified:
		return "unspecified"
	case TypeThisNetwork:
		return "this-network"
	case TypePrivate:
		return "private"
	case TypeShared:
		return "shared-address"
	case TypeLoopback:
		return "loopback"
	case TypeLinkLocal:
		return "link-local"
	case TypeDocumentation:
		return "documentation"
	case TypeBenchmark:
		return "benchmark"
	case TypeMulticast:
		return "multicast"
	case TypeBroadcast:
		return "limited-broadcast"
	case TypeReserved:
		return "reserved"
	default:
		return "unknown"
	}
}

// registryEntry 是特殊用途登记表的一项。
type registryEntry struct {
	prefix netip.Prefix
	typ    RangeType
}

// 特殊用途登记表按前缀长度从长到短排列，嵌套块（如 0.0.0.0/32 在
// 0.0.0.0/8 内、255.255.255.255/32 在 240.0.0.0/4 内）先于外层块命中。
var (
	v4Registry = []registryEntry{
		{netip.MustParsePrefix("0.0.0.0/32"), TypeUnspecified},
		{netip.MustParsePrefix("255.255.255.255/32"), TypeBroadcast},
		{netip.MustParsePrefix("192.0.2.0/24"), TypeDocumentation},
		{netip.MustParsePrefix("198.51.100.0/24"), TypeDocumentation},
		{netip.MustParsePrefix("203.0.113.0/24"), TypeDocumentation},
		{netip.MustParsePrefix("169.254.0.0/16"), TypeLinkLocal},
		{netip.MustParsePrefix("192.168.0.0/16"), TypePrivate},
		{netip.MustParsePrefix("198.18.0.0/15"), TypeBenchmark},
		{netip.MustParsePrefix("172.16.0.0/12"), TypePrivate},
		{netip.MustParsePrefix("100.64.0.0/10"), TypeShared},
		{netip.MustParsePrefix("0.0.0.0/8"), TypeThisNetwork},
		{netip.MustParsePrefix("10.0.0.0/8"), TypePrivate},
		{netip.MustParsePrefix("127.0.0.0/8"), TypeLoopback},
		{netip.MustParsePrefix("224.0.0.0/4"), TypeMulticast},
		{netip.MustParsePrefix("240.0.0.0/4"), TypeReserved},
	}

	v6Registry = []registryEntry{
		{netip.MustParsePrefix("::/128"), TypeUnspecified},
		{netip.MustParsePrefix("::1/128"), TypeLoopback},
		{netip.MustParsePrefix("2001:2::/48"), TypeBenchmark},
		{netip.MustParsePrefix("2001:db8::/32"), TypeDocumentation},
		{netip.MustParsePrefix("fe80::/10"), TypeLinkLocal},
		{netip.MustParsePrefix("ff00::/8"), TypeMulticast},
		{netip.MustParsePrefix("fc00::/7"), TypePrivate},
	}
)

// classifyRange 对区间 [from, to] 做整体分类：
// 取能完整容纳区间的最长前缀登记块的分类；没有块能完整容纳、
// 但存在相交块时说明区间横跨分类边界，为 TypeMixed；
// 与任何登记块都不相交时为 TypePublic。
func classifyRange(from, to netip.Addr) RangeType {
	registry := v6Registry
	if from.Is4() {
		registry = v4Registry
	}
	overlapped := false
	for _, e := range registry {
		block := netipx.RangeOfPrefix(e.prefix)
		if to.Compare(block.From()) < 0 || from.Compare(block.To()) > 0 {
			continue
		}
		if from.Compare(block.From()) >= 0 && to.Compare(block.To()) <= 0 {
			return e.typ
		}
		overlapped = true
	}
	if overlapped {
		return TypeMixed
	}
	return TypePublic
}
