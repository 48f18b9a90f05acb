package xip

import (
	"net/netip"
	"testing"
)

// ===========================================================================
// 解析性能基准
// ===========================================================================

func BenchmarkParse(b *testing.B) {
	inputs := []struct {
		name  string
		input string
		flags Flags
	}{
		{"显式范围", "10.0.0.1-10.0.0.9", 0},
		{"CIDR", "192.168.1.0/24", 0},
		{"点分掩码", "10.0.0.0/255.255.255.0", 0},
		{"通配模式", "10.1.*.*", 0},
		{"IPv6 通配", "2001:db8::*", 0},
		{"单地址", "203.0.113.7", 0},
		{"紧凑范围", "192.168.1-200", AllowCompact},
		{"带端口", "10.0.0.1:8080", AllowPort},
	}
	for _, in := range inputs {
		b.Run(in.name, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := Parse(in.input, in.flags); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// ===========================================================================
// 能力集性能基准
// ===========================================================================

func BenchmarkRangeOps(b *testing.B) {
	r := MustParse("192.168.0.0/16", 0)
	addr := netip.MustParseAddr("192.168.128.1")

	b.Run("Contains", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			_ = r.Contains(addr)
		}
	})
	b.Run("Size", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			_ = r.Size()
		}
	})
	b.Run("NetworkPrefix", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			_ = r.NetworkPrefix()
		}
	})
	b.Run("FullAddr", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			_ = r.FromFull()
		}
	})
	b.Run("ReverseDNSZones", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			_ = r.ReverseDNSZones()
		}
	})
}

// ===========================================================================
// 分类缓存性能基准：首次计算走登记表，之后命中原子缓存
// ===========================================================================

func BenchmarkType(b *testing.B) {
	b.Run("冷启动", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			r, _ := NewStartEnd(
				netip.MustParseAddr("192.168.0.0"),
				netip.MustParseAddr("192.168.255.255"),
			)
			_ = r.Type()
		}
	})
	b.Run("缓存命中", func(b *testing.B) {
		r := MustParse("192.168.0.0/16", 0)
		_ = r.Type()
		b.ReportAllocs()
		for b.Loop() {
			_ = r.Type()
		}
	})
}

// ===========================================================================
// 集合运算性能基准
// ===========================================================================

func BenchmarkMerge(b *testing.B) {
	ranges := make([]Range, 0, 64)
	for i := 0; i < 64; i++ {
		ranges = append(ranges, MustParse("10.0.0.0/24", 0))
	}
	b.ReportAllocs()
	for b.Loop() {
		if _, err := Merge(ranges...); err != nil {
			b.Fatal(err)
		}
	}
}
