package xip

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"net/netip"
)

// AddrFromUint32 把 32 位无符号整数转换为 IPv4 地址（大端序）。
func AddrFromUint32(v uint32) netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return netip.AddrFrom4(b)
}

// AddrToUint32 把 IPv4 地址转换为 32 位无符号整数（大端序）。
// IPv4-mapped IPv6 地址先脱映射。非 IPv4 地址返回 [ErrUnsupported]。
func AddrToUint32(addr netip.Addr) (uint32, error) {
	addr = addr.Unmap()
	if !addr.Is4() {
		return 0, fmt.Errorf("%w: %s is not an IPv4 address", ErrUnsupported, addr)
	}
	b := addr.As4()
	return binary.BigEndian.Uint32(b[:]), nil
}

// AddrToBigInt 把地址转换为任意精度整数，IPv6 的 128 位空间不会溢出。
// IPv4-mapped IPv6 地址先脱映射。无效地址返回 nil。
func AddrToBigInt(addr netip.Addr) *big.Int {
	addr = addr.Unmap()
	switch {
	case addr.Is4():
		b := addr.As4()
		return new(big.Int).SetBytes(b[:])
	case addr.IsValid():
		b := addr.As16()
		return new(big.Int).SetBytes(b[:])
	default:
		return nil
	}
}

// AddrFromBigInt 把任意精度整数还原为指定地址族的地址。
// v 为 nil、为负或超出地址族位宽时返回 [ErrMalformedInput]。
func AddrFromBigInt(v *big.Int, f Family) (netip.Addr, error) {
	if v == nil || v.Sign() < 0 {
		return netip.Addr{}, fmt.Errorf("%w: big.Int value must be non-negative", ErrMalformedInput)
	}
	if bits := f.Bits(); bits == 0 || v.BitLen() > bits {
		return netip.Addr{}, fmt.Errorf("%w: value %s out of range for %s", ErrMalformedInput, v, f)
	}
	if f == F4 {
		var b [4]byte
		v.FillBytes(b[:])
		return netip.AddrFrom4(b), nil
	}
	var b [16]byte
	v.FillBytes(b[:])
	return netip.AddrFrom16(b), nil
}

// FullAddr 返回地址的定宽完整形式，同族地址可直接按字典序比较大小：
//
//	IPv4: "192.168.001.001"（每段补齐三位十进制）
//	IPv6: "2001:0db8:0000:0000:0000:0000:0000:0001"（八组补齐四位十六进制）
//
// IPv4-mapped IPv6 地址先脱映射。无效地址返回空字符串。
func FullAddr(addr netip.Addr) string {
	addr = addr.Unmap()
	switch {
	case addr.Is4():
		b := addr.As4()
		buf := make([]byte, 0, 15)
		for i, v := range b {
			if i > 0 {
				buf = append(buf, '.')
			}
			buf = append(buf, '0'+v/100, '0'+v/10%10, '0'+v%10)
		}
		return string(buf)
	case addr.IsValid():
		return addr.StringExpanded()
	default:
		return ""
	}
}
