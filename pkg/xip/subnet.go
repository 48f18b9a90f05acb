package xip

import (
	"fmt"
	"net/netip"
	"strconv"

	"go4.org/netipx"
)

// Subnet 是 CIDR 子网，对应 "network/bits" 语法，规范的范围表示形式。
// 网络地址的主机位必须全为零："10.0.0.1/24" 不是合法子网，
// 构造方若想取地址所在的网络，应自行先做掩码运算。
type Subnet struct {
	span
	bits int
}

var _ Range = (*Subnet)(nil)

// NewSubnet 用网络地址与前缀位数构造子网。
// bits 超出地址族位宽、或 network 的主机位不为零时报错。
// IPv4-mapped IPv6 地址脱映射，zone ID 剥离。
func NewSubnet(network netip.Addr, bits int) (*Subnet, error) {
	network = normAddr(network)
	if !network.IsValid() {
		return nil, fmt.Errorf("%w: zero netip.Addr", ErrMalformedInput)
	}
	p, err := network.Prefix(bits)
	if err != nil {
		return nil, fmt.Errorf("%w: prefix length /%d out of range for %s", ErrMalformedInput, bits, AddrFamily(network))
	}
	if p.Addr() != network {
		return nil, fmt.Errorf("%w: %s has host bits set for /%d", ErrMalformedInput, network, bits)
	}
	r := netipx.RangeOfPrefix(p)
	return &Subnet{span: span{from: r.From(), to: r.To()}, bits: bits}, nil
}

// SubnetOf 用 [netip.Prefix] 构造子网，约束与 [NewSubnet] 相同。
func SubnetOf(p netip.Prefix) (*Subnet, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("%w: zero netip.Prefix", ErrMalformedInput)
	}
	return NewSubnet(p.Addr(), p.Bits())
}

// Bits 返回前缀位数。
func (r *Subnet) Bits() int { return r.bits }

// Prefix 返回子网对应的 [netip.Prefix]。
func (r *Subnet) Prefix() netip.Prefix {
	return netip.PrefixFrom(r.from, r.bits)
}

// String 返回 CIDR 形式，如 "10.0.0.0/24"。
func (r *Subnet) String() string {
	return r.from.String() + "/" + strconv.Itoa(r.bits)
}
