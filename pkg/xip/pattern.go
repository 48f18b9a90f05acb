package xip

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// Pattern 是尾部通配模式，对应 "1.2.*.*" 或 "2001:db8::*" 语法。
// 末尾 K 个段整段通配，其余段固定，等价于一个按段对齐的 CIDR 块：
// IPv4 的段宽 8 位，IPv6 的段宽 16 位。
// K 为 0 时退化为单地址，这也是单地址输入的内部表示。
type Pattern struct {
	span
	stars int
}

var _ Range = (*Pattern)(nil)

// NewPattern 用一对端点构造通配模式，通配段数由端点自动推导：
// 末尾取值恰好为 [0, 段上限] 的段记作通配，其余段必须两端相等。
// 无法用单个尾部通配模式表达的区间返回 [ErrUnsupported]。
func NewPattern(from, to netip.Addr) (*Pattern, error) {
	from, to, err := checkPair(from, to)
	if err != nil {
		return nil, err
	}
	stars, ok := wildcardRun(from, to)
	if !ok {
		return nil, fmt.Errorf("%w: %s-%s cannot be expressed as a trailing wildcard pattern",
			ErrUnsupported, from, to)
	}
	return &Pattern{span: span{from: from, to: to}, stars: stars}, nil
}

// Wildcards 返回通配段数 K。
func (r *Pattern) Wildcards() int { return r.stars }

// String 返回通配形式。IPv4 如 "10.1.*.*"；IPv6 按八组显式展开，
// 如 "2001:db8:0:0:*:*:*:*"，不做 "::" 压缩以免吞掉通配段。
// K 为 0 时返回地址本身的规范形式。
func (r *Pattern) String() string {
	if r.stars == 0 {
		return r.from.String()
	}
	if r.Family() == F4 {
		b := r.from.As4()
		parts := make([]string, 4)
		for i := 0; i < 4-r.stars; i++ {
			parts[i] = strconv.Itoa(int(b[i]))
		}
		for i := 4 - r.stars; i < 4; i++ {
			parts[i] = "*"
		}
		return strings.Join(parts, ".")
	}
	b := r.from.As16()
	parts := make([]string, 8)
	for i := 0; i < 8-r.stars; i++ {
		parts[i] = strconv.FormatUint(uint64(b[2*i])<<8|uint64(b[2*i+1]), 16)
	}
	for i := 8 - r.stars; i < 8; i++ {
		parts[i] = "*"
	}
	return strings.Join(parts, ":")
}

// wildcardRun 返回把 [from, to] 表达为尾部通配模式所需的通配段数。
// 先取末尾 [0, 段上限] 的最长连续段，再要求其余段两端相等；
// 不满足时 ok 为 false。
func wildcardRun(from, to netip.Addr) (int, bool) {
	units, maxUnit := 4, uint16(0xFF)
	if !from.Is4() {
		units, maxUnit = 8, uint16(0xFFFF)
	}
	f, t := addrUnits(from), addrUnits(to)
	k := 0
	for k < units && f[units-1-k] == 0 && t[units-1-k] == maxUnit {
		k++
	}
	for i := 0; i < units-k; i++ {
		if f[i] != t[i] {
			return 0, false
		}
	}
	return k, true
}

// addrUnits 把地址拆为段序列：IPv4 为 4 个八位段，IPv6 为 8 个十六位组。
func addrUnits(a netip.Addr) []uint16 {
	if a.Is4() {
		b := a.As4()
		return []uint16{uint16(b[0]), uint16(b[1]), uint16(b[2]), uint16(b[3])}
	}
	b := a.As16()
	u := make([]uint16, 8)
	for i := range u {
		u[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
	}
	return u
}
