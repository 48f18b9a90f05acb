package xip

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPattern(t *testing.T) {
	tests := []struct {
		name      string
		from      string
		to        string
		wantErr   error
		wantStars int
		wantStr   string
	}{
		{"末两段通配", "10.1.0.0", "10.1.255.255", nil, 2, "10.1.*.*"},
		{"末段通配", "10.1.2.0", "10.1.2.255", nil, 1, "10.1.2.*"},
		{"全空间通配", "0.0.0.0", "255.255.255.255", nil, 4, "*.*.*.*"},
		{"单地址零通配", "10.1.2.3", "10.1.2.3", nil, 0, "10.1.2.3"},
		{"起点以零结尾仍是单地址", "10.1.2.0", "10.1.2.0", nil, 0, "10.1.2.0"},
		{"IPv6 末组通配", "2001:db8::", "2001:db8::ffff", nil, 1, "2001:db8:0:0:0:0:0:*"},
		{"IPv6 全空间", "::", "ffff:ffff:ffff:ffff:ffff:ffff:ffff:ffff", nil, 8, "*:*:*:*:*:*:*:*"},
		{"非整段区间", "10.0.0.1", "10.0.0.9", ErrUnsupported, 0, ""},
		{"整段但首段不等", "1.0.0.0", "2.255.255.255", ErrUnsupported, 0, ""},
		{"CIDR 块但不按段对齐", "10.0.0.0", "10.0.0.3", ErrUnsupported, 0, ""},
		{"起止倒序", "10.1.255.255", "10.1.0.0", ErrInvalidOrdering, 0, ""},
		{"混合地址族", "10.0.0.0", "2001:db8::", ErrFamilyMismatch, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPattern(netip.MustParseAddr(tt.from), netip.MustParseAddr(tt.to))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStars, p.Wildcards())
			assert.Equal(t, tt.wantStr, p.String())
		})
	}
}

func TestPattern_SubnetEquivalence(t *testing.T) {
	// "127.0.*.*" 与 "127.0.0.0/16" 是同一区间的两种写法。
	p := MustParse("127.0.*.*", 0)
	sub := MustParse("127.0.0.0/16", 0)

	assert.Equal(t, sub.From(), p.From())
	assert.Equal(t, sub.To(), p.To())
	assert.Equal(t, sub.NetworkPrefix(), p.NetworkPrefix())
	assert.Equal(t, 0, sub.Size().Cmp(p.Size()))
	assert.Equal(t, sub.ReverseDNSZones(), p.ReverseDNSZones())
	assert.Equal(t, sub.Type(), p.Type())

	pMask, err := p.SubnetMask()
	require.NoError(t, err)
	sMask, err := sub.SubnetMask()
	require.NoError(t, err)
	assert.Equal(t, sMask, pMask)

	converted, err := p.AsSubnet()
	require.NoError(t, err)
	assert.Equal(t, sub.String(), converted.String())
}

func TestPattern_NetworkPrefix(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"10.1.2.3", 32},
		{"10.1.2.*", 24},
		{"10.1.*.*", 16},
		{"10.*.*.*", 8},
		{"*.*.*.*", 0},
		{"2001:db8::1", 128},
		{"2001:db8::*", 112},
		{"2001:db8:*:*:*:*:*:*", 32},
		{"*:*:*:*:*:*:*:*", 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParse(tt.input, 0).NetworkPrefix())
		})
	}
}

func TestPattern_SubnetMask(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"10.1.2.3", "255.255.255.255"},
		{"10.1.2.*", "255.255.255.0"},
		{"10.1.*.*", "255.255.0.0"},
		{"*.*.*.*", "0.0.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mask, err := MustParse(tt.input, 0).SubnetMask()
			require.NoError(t, err)
			assert.Equal(t, tt.want, mask.String())
		})
	}

	t.Run("IPv6 不支持", func(t *testing.T) {
		_, err := MustParse("2001:db8::*", 0).SubnetMask()
		require.ErrorIs(t, err, ErrUnsupported)
	})
}

func TestPattern_Size(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"10.1.2.3", "1"},
		{"10.1.2.*", "256"},
		{"10.1.*.*", "65536"},
		{"*.*.*.*", "4294967296"},
		{"2001:db8::*", "65536"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParse(tt.input, 0).Size().String())
		})
	}
}

func TestPattern_ReverseDNSZones(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"10.1.*.*", []string{"1.10.in-addr.arpa"}},
		{"10.1.2.3", []string{"3.2.1.10.in-addr.arpa"}},
		{"*.*.*.*", []string{"in-addr.arpa"}},
		{"2001:db8:*:*:*:*:*:*", []string{"8.b.d.0.1.0.0.2.ip6.arpa"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParse(tt.input, 0).ReverseDNSZones())
		})
	}
}

func TestPattern_Contains(t *testing.T) {
	p := MustParse("192.168.*.*", 0)
	assert.True(t, p.Contains(netip.MustParseAddr("192.168.0.0")))
	assert.True(t, p.Contains(netip.MustParseAddr("192.168.255.255")))
	assert.False(t, p.Contains(netip.MustParseAddr("192.169.0.0")))
	assert.False(t, p.Contains(netip.MustParseAddr("2001:db8::1")))
}
