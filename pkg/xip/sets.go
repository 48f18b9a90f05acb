package xip

import (
	"fmt"

	"go4.org/netipx"
)

// IPRangeOf 把范围桥接为 [netipx.IPRange]，便于复用 netipx 的集合设施。
func IPRangeOf(r Range) netipx.IPRange {
	if r == nil {
		return netipx.IPRange{}
	}
	return netipx.IPRangeFrom(r.From(), r.To())
}

// FromIPRange 把 [netipx.IPRange] 桥接回显式范围。
func FromIPRange(ir netipx.IPRange) (*StartEnd, error) {
	if !ir.IsValid() {
		return nil, fmt.Errorf("%w: invalid netipx.IPRange", ErrMalformedInput)
	}
	return NewStartEnd(ir.From(), ir.To())
}

// Subnets 把区间精确分解为最少数量的 CIDR 子网序列。
// 与 [Range] 的 AsSubnet 不同，任意区间都可分解，不要求块对齐；
// 块对齐的区间分解结果恰好是单个子网。
func Subnets(r Range) []*Subnet {
	if r == nil {
		return nil
	}
	prefixes := IPRangeOf(r).Prefixes()
	out := make([]*Subnet, len(prefixes))
	for i, p := range prefixes {
		block := netipx.RangeOfPrefix(p)
		out[i] = &Subnet{span: span{from: block.From(), to: block.To()}, bits: p.Bits()}
	}
	return out
}

// Overlaps 报告两个范围是否存在公共地址。地址族不同恒为 false。
func Overlaps(a, b Range) bool {
	if a == nil || b == nil || a.Family() != b.Family() {
		return false
	}
	return a.From().Compare(b.To()) <= 0 && b.From().Compare(a.To()) <= 0
}

// ContainsRange 报告 outer 是否完整覆盖 inner。地址族不同恒为 false。
func ContainsRange(outer, inner Range) bool {
	if outer == nil || inner == nil || outer.Family() != inner.Family() {
		return false
	}
	return outer.From().Compare(inner.From()) <= 0 && inner.To().Compare(outer.To()) <= 0
}

// Merge 聚并一组范围：重叠或首尾相接的区间合并后，
// 返回按地址顺序排列的最少显式范围序列。输入可混合两个地址族，
// nil 项被跳过。
func Merge(ranges ...Range) ([]*StartEnd, error) {
	set, err := SetOf(ranges...)
	if err != nil {
		return nil, err
	}
	ipRanges := set.Ranges()
	out := make([]*StartEnd, len(ipRanges))
	for i, ir := range ipRanges {
		out[i] = &StartEnd{span: span{from: ir.From(), to: ir.To()}}
	}
	return out, nil
}

// SetOf 把一组范围装入 [netipx.IPSet]，用于差集、交集等更复杂的集合运算。
// nil 项被跳过。
func SetOf(ranges ...Range) (*netipx.IPSet, error) {
	var b netipx.IPSetBuilder
	for _, r := range ranges {
		if r == nil {
			continue
		}
		b.AddRange(IPRangeOf(r))
	}
	set, err := b.IPSet()
	if err != nil {
		return nil, fmt.Errorf("%w: build IP set: %w", ErrMalformedInput, err)
	}
	return set, nil
}
