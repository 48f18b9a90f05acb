package xip

import (
	"iter"
	"net/netip"
)

// Addrs 返回按地址顺序遍历区间的迭代器。
// 区间可能极大（IPv6 最多 2^128 个地址），调用方应自行限制消费数量，
// 或配合 [CollectN] 使用。
func Addrs(r Range) iter.Seq[netip.Addr] {
	return func(yield func(netip.Addr) bool) {
		if r == nil {
			return
		}
		last := r.To()
		for cur := r.From(); cur.IsValid(); cur = cur.Next() {
			if !yield(cur) {
				return
			}
			if cur == last {
				return
			}
		}
	}
}

// Hosts 返回遍历子网内主机地址的迭代器：
// IPv4 且前缀不长于 /30 时跳过网络地址与广播地址，
// /31、/32 与 IPv6 子网没有这两个特殊地址，等同 [Addrs]。
func Hosts(s *Subnet) iter.Seq[netip.Addr] {
	return func(yield func(netip.Addr) bool) {
		if s == nil {
			return
		}
		from, to := s.From(), s.To()
		if s.Family() == F4 && s.bits <= 30 {
			from, to = from.Next(), to.Prev()
		}
		for cur := from; cur.IsValid(); cur = cur.Next() {
			if !yield(cur) {
				return
			}
			if cur == to {
				return
			}
		}
	}
}

// CollectN 从迭代器收集最多 n 个地址，n 不为正时返回 nil。
// 预分配容量设有上限，超大 n 不会直接打爆内存。
func CollectN(seq iter.Seq[netip.Addr], n int) []netip.Addr {
	if n <= 0 {
		return nil
	}
	capHint := n
	if capHint > 1<<20 {
		capHint = 1 << 20
	}
	out := make([]netip.Addr, 0, capHint)
	for addr := range seq {
		out = append(out, addr)
		if len(out) == n {
			break
		}
	}
	return out
}
