package xip

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubnet(t *testing.T) {
	tests := []struct {
		name    string
		network string
		bits    int
		wantErr error
		want    string
	}{
		{"IPv4 /24", "192.168.1.0", 24, nil, "192.168.1.0/24"},
		{"IPv4 /32 单地址", "10.0.0.1", 32, nil, "10.0.0.1/32"},
		{"IPv4 /0 全空间", "0.0.0.0", 0, nil, "0.0.0.0/0"},
		{"IPv6 /64", "2001:db8::", 64, nil, "2001:db8::/64"},
		{"IPv4-mapped 网络地址脱映射", "::ffff:10.0.0.0", 24, nil, "10.0.0.0/24"},
		{"主机位非零", "10.0.0.1", 24, ErrMalformedInput, ""},
		{"IPv6 主机位非零", "2001:db8::1", 64, ErrMalformedInput, ""},
		{"前缀超出 IPv4 位宽", "10.0.0.0", 33, ErrMalformedInput, ""},
		{"前缀为负", "10.0.0.0", -1, ErrMalformedInput, ""},
		{"前缀超出 IPv6 位宽", "2001:db8::", 129, ErrMalformedInput, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := NewSubnet(netip.MustParseAddr(tt.network), tt.bits)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, sub.String())
			assert.Equal(t, tt.bits, sub.Bits())
		})
	}

	t.Run("零值地址", func(t *testing.T) {
		_, err := NewSubnet(netip.Addr{}, 24)
		require.ErrorIs(t, err, ErrMalformedInput)
	})
}

func TestSubnetOf(t *testing.T) {
	sub, err := SubnetOf(netip.MustParsePrefix("172.16.0.0/12"))
	require.NoError(t, err)
	assert.Equal(t, "172.16.0.0/12", sub.String())
	assert.Equal(t, netip.MustParsePrefix("172.16.0.0/12"), sub.Prefix())

	_, err = SubnetOf(netip.Prefix{})
	require.ErrorIs(t, err, ErrMalformedInput)

	_, err = SubnetOf(netip.MustParsePrefix("10.0.0.1/24"))
	require.ErrorIs(t, err, ErrMalformedInput, "netip 的宽容前缀在这里必须显式掩码")
}

func TestSubnet_Endpoints(t *testing.T) {
	tests := []struct {
		name     string
		cidr     string
		wantFrom string
		wantTo   string
	}{
		{"IPv4 /24", "192.168.1.0/24", "192.168.1.0", "192.168.1.255"},
		{"IPv4 /31 点对点", "10.0.0.0/31", "10.0.0.0", "10.0.0.1"},
		{"IPv4 /32", "10.0.0.1/32", "10.0.0.1", "10.0.0.1"},
		{"IPv6 /127", "2001:db8::/127", "2001:db8::", "2001:db8::1"},
		{"IPv6 /48", "2001:db8:1::/48", "2001:db8:1::", "2001:db8:1:ffff:ffff:ffff:ffff:ffff"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := MustParse(tt.cidr, 0)
			assert.Equal(t, tt.wantFrom, sub.From().String())
			assert.Equal(t, tt.wantTo, sub.To().String())
		})
	}
}

func TestSubnet_Size(t *testing.T) {
	tests := []struct {
		cidr string
		want string
	}{
		{"10.0.0.0/24", "256"},
		{"10.0.0.0/31", "2"},
		{"10.0.0.1/32", "1"},
		{"0.0.0.0/0", "4294967296"},
		{"2001:db8::/64", "18446744073709551616"},
		{"::/0", "340282366920938463463374607431768211456"},
		{"2001:db8::1/128", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.cidr, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParse(tt.cidr, 0).Size().String())
		})
	}
}

func TestSubnet_SubnetMask(t *testing.T) {
	tests := []struct {
		cidr string
		want string
	}{
		{"192.168.1.0/24", "255.255.255.0"},
		{"10.0.0.0/8", "255.0.0.0"},
		{"172.16.0.0/12", "255.240.0.0"},
		{"10.0.0.1/32", "255.255.255.255"},
		{"0.0.0.0/0", "0.0.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.cidr, func(t *testing.T) {
			mask, err := MustParse(tt.cidr, 0).SubnetMask()
			require.NoError(t, err)
			assert.Equal(t, tt.want, mask.String())
		})
	}

	t.Run("IPv6 不支持", func(t *testing.T) {
		_, err := MustParse("2001:db8::/32", 0).SubnetMask()
		require.ErrorIs(t, err, ErrUnsupported)
	})
}

func TestSubnet_ReverseDNSZones(t *testing.T) {
	tests := []struct {
		cidr string
		want []string
	}{
		{"192.168.1.0/24", []string{"1.168.192.in-addr.arpa"}},
		{"192.168.0.0/16", []string{"168.192.in-addr.arpa"}},
		{"10.0.0.0/8", []string{"10.in-addr.arpa"}},
		{"10.0.0.1/32", []string{"1.0.0.10.in-addr.arpa"}},
		{"0.0.0.0/0", []string{"in-addr.arpa"}},
		// 前缀不在标签边界上时向下取整：/21 → /16。
		{"10.8.0.0/21", []string{"8.10.in-addr.arpa"}},
		{"10.0.0.0/30", []string{"0.0.10.in-addr.arpa"}},
		{"2001:db8::/32", []string{"8.b.d.0.1.0.0.2.ip6.arpa"}},
		{"::/0", []string{"ip6.arpa"}},
		// IPv6 按 nibble 取整：/33 → /32。
		{"2001:db8::/33", []string{"8.b.d.0.1.0.0.2.ip6.arpa"}},
		{"2001:db8::1/128", []string{"1.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.8.b.d.0.1.0.0.2.ip6.arpa"}},
	}
	for _, tt := range tests {
		t.Run(tt.cidr, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParse(tt.cidr, 0).ReverseDNSZones())
		})
	}
}

func TestSubnet_Conversions(t *testing.T) {
	t.Run("按段对齐转通配", func(t *testing.T) {
		p, err := MustParse("10.1.0.0/16", 0).AsPattern()
		require.NoError(t, err)
		assert.Equal(t, "10.1.*.*", p.String())
		assert.Equal(t, 2, p.Wildcards())
	})
	t.Run("IPv6 按组对齐转通配", func(t *testing.T) {
		p, err := MustParse("2001:db8::/32", 0).AsPattern()
		require.NoError(t, err)
		assert.Equal(t, "2001:db8:*:*:*:*:*:*", p.String())
		assert.Equal(t, 6, p.Wildcards())
	})
	t.Run("不按段对齐拒绝转通配", func(t *testing.T) {
		_, err := MustParse("10.0.0.0/20", 0).AsPattern()
		require.ErrorIs(t, err, ErrUnsupported)
	})
	t.Run("转子网返回等价实例", func(t *testing.T) {
		sub, err := MustParse("10.0.0.0/20", 0).AsSubnet()
		require.NoError(t, err)
		assert.Equal(t, "10.0.0.0/20", sub.String())
	})
	t.Run("转显式范围", func(t *testing.T) {
		se := MustParse("10.0.0.0/30", 0).AsStartEnd()
		assert.Equal(t, "10.0.0.0-10.0.0.3", se.String())
	})
}
