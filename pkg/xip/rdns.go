package xip

import (
	"net/netip"
	"strconv"
	"strings"
)

// 反向 DNS 区域名的固定后缀。
const (
	arpaSuffixV4 = "in-addr.arpa"
	arpaSuffixV6 = "ip6.arpa"
)

// reverseZones 返回能覆盖前缀 [addr, prefixBits] 的最小反向 DNS 授权区域。
// 反向区域按标签授权：IPv4 一个标签 8 位，IPv6 一个标签 4 位（nibble），
// 前缀位数先向下取整到标签边界，再取该边界内的标签。
// 向下取整保证返回的区域覆盖整个区间，代价是可能比区间本身更宽。
func reverseZones(addr netip.Addr, prefixBits int) []string {
	if addr.Is4() {
		return []string{reverseZone4(addr, prefixBits/8)}
	}
	return []string{reverseZone6(addr, prefixBits/4)}
}

// reverseZone4 返回 IPv4 地址前 labels 个八位段的反向区域名。
// labels 为 0 时返回根区域 "in-addr.arpa"。
func reverseZone4(addr netip.Addr, labels int) string {
	b := addr.As4()
	var sb strings.Builder
	sb.Grow(labels*4 + len(arpaSuffixV4))
	for i := labels - 1; i >= 0; i-- {
		sb.WriteString(strconv.Itoa(int(b[i])))
		sb.WriteByte('.')
	}
	sb.WriteString(arpaSuffixV4)
	return sb.String()
}

// reverseZone6 返回 IPv6 地址前 labels 个 nibble 的反向区域名。
// labels 为 0 时返回根区域 "ip6.arpa"。
func reverseZone6(addr netip.Addr, labels int) string {
	b := addr.As16()
	var sb strings.Builder
	sb.Grow(labels*2 + len(arpaSuffixV6))
	for i := labels - 1; i >= 0; i-- {
		nibble := b[i/2] >> 4
		if i%2 == 1 {
			nibble = b[i/2] & 0x0F
		}
		sb.WriteByte(hexDigit(nibble))
		sb.WriteByte('.')
	}
	sb.WriteString(arpaSuffixV6)
	return sb.String()
}

// hexDigit 返回 0~15 对应的小写十六进制字符。
func hexDigit(v byte) byte {
	if v < 10 {
		return '0' + v
	}
	return 'a' + v - 10
}
