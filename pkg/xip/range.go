package xip

import (
	"fmt"
	"math/big"
	"math/bits"
	"net/netip"
	"sync/atomic"

	"go4.org/netipx"
)

// Range 是连续 IP 地址区间的统一抽象。
// 四种表示法（显式范围、CIDR 子网、尾部通配模式、紧凑范围）共享同一能力集，
// 只在字符串形式与构造约束上有差异。
//
// 实现类型均为指针语义（*StartEnd、*Subnet、*Pattern、*Compact），
// 值一经构造不可变，可在多个 goroutine 间安全共享。
type Range interface {
	// Family 返回区间的地址族，构造时即确定，F4 或 F6。
	Family() Family
	// From 返回区间的起始地址（含）。
	From() netip.Addr
	// To 返回区间的结束地址（含）。
	To() netip.Addr
	// FromFull 返回起始地址的定宽完整形式，见 [FullAddr]。
	FromFull() string
	// ToFull 返回结束地址的定宽完整形式，见 [FullAddr]。
	ToFull() string
	// Size 返回区间内的地址数量。全 IPv6 空间为 2^128，
	// 超出 uint64 表达范围，故统一返回 *big.Int。
	Size() *big.Int
	// NetworkPrefix 返回能覆盖整个区间的最长网络前缀位数，
	// 即起止地址公共前缀的长度。单地址返回地址族位宽。
	NetworkPrefix() int
	// SubnetMask 返回 NetworkPrefix 对应的点分子网掩码。
	// 该形式只对 IPv4 有定义，IPv6 区间返回 [ErrUnsupported]。
	SubnetMask() (netip.Addr, error)
	// ReverseDNSZones 返回能覆盖整个区间的最小反向 DNS 授权区域。
	// 前缀位数向下取整到标签宽度（IPv4 按 8 位、IPv6 按 4 位），
	// 区域名不带结尾的点。
	ReverseDNSZones() []string
	// Type 返回区间的 IANA 特殊用途分类，首次调用后按实例缓存。
	Type() RangeType
	// Contains 报告 addr 是否落在区间内。地址族不同返回 false。
	Contains(addr netip.Addr) bool
	// AsStartEnd 把区间转换为显式范围表示。任何区间都可转换。
	AsStartEnd() *StartEnd
	// AsSubnet 把区间转换为 CIDR 子网表示。
	// 起止必须恰好落在同一个 CIDR 块的边界上，否则返回 [ErrUnsupported]。
	AsSubnet() (*Subnet, error)
	// AsPattern 把区间转换为尾部通配模式表示。
	// 区间必须是按段对齐的 CIDR 块（IPv4 按 8 位、IPv6 按 16 位），
	// 否则返回 [ErrUnsupported]。
	AsPattern() (*Pattern, error)
	// String 返回区间的规范字符串形式，与构造它的语法一致。
	String() string
}

// span 是四种区间表示共享的底座：一对同族、已规范化、起不大于止的地址，
// 外加延迟计算的分类缓存。所有 Range 能力在此实现一次，
// 各表示类型只负责自己的构造约束与字符串形式。
type span struct {
	from netip.Addr
	to   netip.Addr

	// typ 缓存 Type 的计算结果：0 表示未计算，其余存储 RangeType+1。
	// 并发竞态下最多重复计算，不会产生不一致的值。
	typ atomic.Uint32
}

// normAddr 把地址规范化为区间运算使用的形式：
// IPv4-mapped IPv6 脱映射为纯 IPv4，zone ID 剥离。
func normAddr(addr netip.Addr) netip.Addr {
	return addr.Unmap().WithZone("")
}

// checkPair 规范化并校验一对区间端点。
// 返回的地址可直接作为 span 的 from/to。
func checkPair(from, to netip.Addr) (netip.Addr, netip.Addr, error) {
	from = normAddr(from)
	to = normAddr(to)
	if !from.IsValid() || !to.IsValid() {
		return netip.Addr{}, netip.Addr{}, fmt.Errorf("%w: zero netip.Addr", ErrMalformedInput)
	}
	if from.Is4() != to.Is4() {
		return netip.Addr{}, netip.Addr{}, fmt.Errorf("%w: %s and %s", ErrFamilyMismatch, from, to)
	}
	if from.Compare(to) > 0 {
		return netip.Addr{}, netip.Addr{}, fmt.Errorf("%w: %s > %s", ErrInvalidOrdering, from, to)
	}
	return from, to, nil
}

// Family 返回区间的地址族。
func (s *span) Family() Family {
	if s.from.Is4() {
		return F4
	}
	if s.from.IsValid() {
		return F6
	}
	return F0
}

// From 返回区间的起始地址。
func (s *span) From() netip.Addr { return s.from }

// To 返回区间的结束地址。
func (s *span) To() netip.Addr { return s.to }

// FromFull 返回起始地址的定宽完整形式。
func (s *span) FromFull() string { return FullAddr(s.from) }

// ToFull 返回结束地址的定宽完整形式。
func (s *span) ToFull() string { return FullAddr(s.to) }

// Size 返回区间内的地址数量（to - from + 1）。
func (s *span) Size() *big.Int {
	size := new(big.Int).Sub(AddrToBigInt(s.to), AddrToBigInt(s.from))
	return size.Add(size, big.NewInt(1))
}

// NetworkPrefix 返回起止地址公共前缀的位数。
func (s *span) NetworkPrefix() int {
	return commonPrefixLen(s.from, s.to)
}

// SubnetMask 返回 NetworkPrefix 对应的点分子网掩码，仅 IPv4 有定义。
func (s *span) SubnetMask() (netip.Addr, error) {
	if s.Family() != F4 {
		return netip.Addr{}, fmt.Errorf("%w: dotted subnet mask is IPv4-only", ErrUnsupported)
	}
	return maskAddr(s.NetworkPrefix()), nil
}

// Contains 报告 addr 是否落在区间内。
func (s *span) Contains(addr netip.Addr) bool {
	addr = normAddr(addr)
	if !addr.IsValid() || addr.Is4() != s.from.Is4() {
		return false
	}
	return s.from.Compare(addr) <= 0 && addr.Compare(s.to) <= 0
}

// Type 返回区间的 IANA 特殊用途分类，结果按实例缓存。
func (s *span) Type() RangeType {
	if v := s.typ.Load(); v != 0 {
		return RangeType(v - 1)
	}
	t := classifyRange(s.from, s.to)
	s.typ.Store(uint32(t) + 1)
	return t
}

// ReverseDNSZones 返回覆盖整个区间的最小反向 DNS 授权区域。
func (s *span) ReverseDNSZones() []string {
	return reverseZones(s.from, s.NetworkPrefix())
}

// AsStartEnd 把区间转换为显式范围表示。
func (s *span) AsStartEnd() *StartEnd {
	return &StartEnd{span: span{from: s.from, to: s.to}}
}

// AsSubnet 把区间转换为 CIDR 子网表示，要求起止恰好是块边界。
func (s *span) AsSubnet() (*Subnet, error) {
	p, ok := netipx.IPRangeFrom(s.from, s.to).Prefix()
	if !ok {
		return nil, fmt.Errorf("%w: %s-%s is not a single CIDR block", ErrUnsupported, s.from, s.to)
	}
	return &Subnet{span: span{from: s.from, to: s.to}, bits: p.Bits()}, nil
}

// AsPattern 把区间转换为尾部通配模式表示，要求是按段对齐的 CIDR 块。
func (s *span) AsPattern() (*Pattern, error) {
	sub, err := s.AsSubnet()
	if err != nil {
		return nil, err
	}
	width := 8
	if s.Family() == F6 {
		width = 16
	}
	if sub.bits%width != 0 {
		return nil, fmt.Errorf("%w: /%d is not aligned to a %d-bit group boundary",
			ErrUnsupported, sub.bits, width)
	}
	return &Pattern{
		span:  span{from: s.from, to: s.to},
		stars: (s.Family().Bits() - sub.bits) / width,
	}, nil
}

// Compare 按起始地址、再按结束地址比较两个区间，用于排序。
// netip.Addr 的全序保证 IPv4 恒排在 IPv6 之前。
// nil 视为最小值。
func Compare(a, b Range) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if c := a.From().Compare(b.From()); c != 0 {
		return c
	}
	return a.To().Compare(b.To())
}

// commonPrefixLen 返回两个同族地址公共前缀的位数。
func commonPrefixLen(a, b netip.Addr) int {
	if a.Is4() {
		xor := mustUint32(a) ^ mustUint32(b)
		return bits.LeadingZeros32(xor)
	}
	ab, bb := a.As16(), b.As16()
	n := 0
	for i := range ab {
		xor := ab[i] ^ bb[i]
		if xor != 0 {
			return n + bits.LeadingZeros8(xor)
		}
		n += 8
	}
	return n
}

// maskAddr 返回前缀位数对应的 IPv4 点分掩码，bits 取值 0~32。
func maskAddr(bits int) netip.Addr {
	return AddrFromUint32(^uint32(0) << (32 - bits))
}

// mustUint32 是 AddrToUint32 的内部版本，调用方保证 addr 为纯 IPv4。
func mustUint32(addr netip.Addr) uint32 {
	b := addr.As4()
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
