package xip

import (
	"testing"
)

// ===========================================================================
// Parse 模糊测试：任何输入都不允许 panic，解析成功的区间必须满足不变量
// ===========================================================================

func FuzzParse(f *testing.F) {
	seeds := []string{
		"10.0.0.1-10.0.0.9",
		"192.168.1.0/24",
		"10.0.0.0/255.255.255.0",
		"10.1.*.*",
		"2001:db8::*",
		"2001:db8::/32",
		"203.0.113.7",
		"192.168.1-200",
		"1.2.3.4-5",
		"::ffff:10.0.0.0/120",
		"fe80::1%eth0",
		"[2001:db8::1]:443",
		"10.0.0.1:8080",
		"0xC0.0xA8.1.1",
		"010.0.0.1",
		"",
		"-",
		"/",
		"*",
		"%",
		"256.256.256.256",
		"10.0.0.9-10.0.0.1",
		"10.0.0.1-2001:db8::1",
		"......",
		"::::",
		"*.*.*.*",
		"0.0.0.0/0",
	}
	allFlags := AllowPort | AllowZone | AllowNonDecimal | AllowCompact
	for _, s := range seeds {
		f.Add(s, uint8(0))
		f.Add(s, uint8(allFlags))
	}
	f.Fuzz(func(t *testing.T, input string, rawFlags uint8) {
		flags := Flags(rawFlags) & allFlags
		r, err := Parse(input, flags)
		if err != nil {
			if r != nil {
				t.Fatalf("出错时必须返回 nil 范围: %q", input)
			}
			return
		}

		if r.From().Compare(r.To()) > 0 {
			t.Fatalf("from 大于 to: %q", input)
		}
		if fam := r.Family(); fam != F4 && fam != F6 {
			t.Fatalf("非法地址族 %v: %q", fam, input)
		}
		if r.From().Is4() != r.To().Is4() {
			t.Fatalf("端点地址族不一致: %q", input)
		}
		if r.From().Zone() != "" || r.To().Zone() != "" {
			t.Fatalf("端点不允许携带 zone: %q", input)
		}
		if r.Size().Sign() <= 0 {
			t.Fatalf("区间大小必须为正: %q", input)
		}
		if p := r.NetworkPrefix(); p < 0 || p > r.Family().Bits() {
			t.Fatalf("覆盖前缀越界 %d: %q", p, input)
		}
		if r.FromFull() > r.ToFull() {
			t.Fatalf("定宽形式违反字典序: %q", input)
		}
		if !r.Contains(r.From()) || !r.Contains(r.To()) {
			t.Fatalf("区间必须包含自身端点: %q", input)
		}

		// 规范形式在相同标志下重新解析必须得到同一区间。
		again, err := Parse(r.String(), flags)
		if err != nil {
			t.Fatalf("规范形式 %q 无法重新解析: %v（原输入 %q）", r.String(), err, input)
		}
		if again.From() != r.From() || again.To() != r.To() {
			t.Fatalf("规范形式往返后端点漂移: %q -> %q", input, r.String())
		}
	})
}

// ===========================================================================
// 转换一致性模糊测试：AsStartEnd/AsSubnet/AsPattern 不得改变区间语义
// ===========================================================================

func FuzzConversions(f *testing.F) {
	seeds := []string{
		"10.0.0.0/24",
		"10.0.0.1-10.0.0.9",
		"10.1.*.*",
		"2001:db8::/64",
		"0.0.0.0/0",
		"192.168.1.1",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, input string) {
		r, err := Parse(input, 0)
		if err != nil {
			return
		}

		se := r.AsStartEnd()
		if se.From() != r.From() || se.To() != r.To() {
			t.Fatalf("AsStartEnd 改变端点: %q", input)
		}

		if sub, err := r.AsSubnet(); err == nil {
			if sub.From() != r.From() || sub.To() != r.To() {
				t.Fatalf("AsSubnet 改变端点: %q", input)
			}
			if sub.NetworkPrefix() != sub.Bits() {
				t.Fatalf("子网覆盖前缀与前缀位数不一致: %q", input)
			}
		}

		if p, err := r.AsPattern(); err == nil {
			if p.From() != r.From() || p.To() != r.To() {
				t.Fatalf("AsPattern 改变端点: %q", input)
			}
			width := 8
			if r.Family() == F6 {
				width = 16
			}
			wantPrefix := r.Family().Bits() - p.Wildcards()*width
			if p.NetworkPrefix() != wantPrefix {
				t.Fatalf("通配段数与覆盖前缀不一致: %q", input)
			}
		}
	})
}
