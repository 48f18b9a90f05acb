package xip

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddrs(t *testing.T) {
	t.Run("顺序遍历", func(t *testing.T) {
		got := CollectN(Addrs(MustParse("10.0.0.1-10.0.0.4", 0)), 100)
		want := []netip.Addr{
			netip.MustParseAddr("10.0.0.1"),
			netip.MustParseAddr("10.0.0.2"),
			netip.MustParseAddr("10.0.0.3"),
			netip.MustParseAddr("10.0.0.4"),
		}
		assert.Equal(t, want, got)
	})
	t.Run("单地址", func(t *testing.T) {
		got := CollectN(Addrs(MustParse("10.0.0.1", 0)), 100)
		require.Len(t, got, 1)
		assert.Equal(t, "10.0.0.1", got[0].String())
	})
	t.Run("提前退出", func(t *testing.T) {
		count := 0
		for range Addrs(MustParse("10.0.0.0/8", 0)) {
			count++
			if count == 3 {
				break
			}
		}
		assert.Equal(t, 3, count)
	})
	t.Run("IPv6 跨组进位", func(t *testing.T) {
		got := CollectN(Addrs(MustParse("2001:db8::ffff-2001:db8::1:2", 0)), 100)
		want := []netip.Addr{
			netip.MustParseAddr("2001:db8::ffff"),
			netip.MustParseAddr("2001:db8::1:0"),
			netip.MustParseAddr("2001:db8::1:1"),
			netip.MustParseAddr("2001:db8::1:2"),
		}
		assert.Equal(t, want, got)
	})
	t.Run("地址空间上界处终止", func(t *testing.T) {
		got := CollectN(Addrs(MustParse("255.255.255.254-255.255.255.255", 0)), 100)
		assert.Len(t, got, 2)
	})
	t.Run("nil 范围为空", func(t *testing.T) {
		assert.Empty(t, CollectN(Addrs(nil), 100))
	})
}

func TestHosts(t *testing.T) {
	t.Run("跳过网络地址与广播地址", func(t *testing.T) {
		sub, err := MustParse("192.168.1.0/29", 0).AsSubnet()
		require.NoError(t, err)
		got := CollectN(Hosts(sub), 100)
		require.Len(t, got, 6)
		assert.Equal(t, "192.168.1.1", got[0].String())
		assert.Equal(t, "192.168.1.6", got[5].String())
	})
	t.Run("/31 点对点不跳过", func(t *testing.T) {
		sub, err := MustParse("10.0.0.0/31", 0).AsSubnet()
		require.NoError(t, err)
		assert.Len(t, CollectN(Hosts(sub), 100), 2)
	})
	t.Run("/32 单地址不跳过", func(t *testing.T) {
		sub, err := MustParse("10.0.0.1/32", 0).AsSubnet()
		require.NoError(t, err)
		assert.Len(t, CollectN(Hosts(sub), 100), 1)
	})
	t.Run("IPv6 不跳过", func(t *testing.T) {
		sub, err := MustParse("2001:db8::/126", 0).AsSubnet()
		require.NoError(t, err)
		got := CollectN(Hosts(sub), 100)
		require.Len(t, got, 4)
		assert.Equal(t, "2001:db8::", got[0].String())
	})
	t.Run("nil 子网为空", func(t *testing.T) {
		assert.Empty(t, CollectN(Hosts(nil), 100))
	})
}

func TestCollectN(t *testing.T) {
	seq := Addrs(MustParse("10.0.0.0/24", 0))

	assert.Nil(t, CollectN(seq, 0))
	assert.Nil(t, CollectN(seq, -1))
	assert.Len(t, CollectN(seq, 10), 10)
	assert.Len(t, CollectN(seq, 10000), 256, "超过区间大小时收集全部")
}
