package xip

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// Compact 是 IPv4 专有的紧凑范围，对应 "192.168.1-200" 语法：
// '-' 右侧的数值替换左侧最后一个八位段作为上界，
// 未给出的低位段在起点展开为 0、在终点展开为 255。
//
//	"1.2.3-200"  ⇒ 1.2.3.0 ~ 1.2.200.255
//	"1.2.3.4-5"  ⇒ 1.2.3.4 ~ 1.2.3.5
//	"1-5"        ⇒ 1.0.0.0 ~ 5.255.255.255
type Compact struct {
	span
	parts int
}

var _ Range = (*Compact)(nil)

// NewCompact 用左侧八位段序列与上界构造紧凑范围。
// given 长度必须在 1~4 之间；end 小于最后一个给出段时返回 [ErrInvalidOrdering]。
func NewCompact(given []byte, end byte) (*Compact, error) {
	n := len(given)
	if n < 1 || n > 4 {
		return nil, fmt.Errorf("%w: compact range needs 1 to 4 leading octets, got %d", ErrMalformedInput, n)
	}
	var fb, tb [4]byte
	copy(fb[:], given)
	copy(tb[:], given)
	tb[n-1] = end
	for i := n; i < 4; i++ {
		tb[i] = 0xFF
	}
	from, to := netip.AddrFrom4(fb), netip.AddrFrom4(tb)
	if from.Compare(to) > 0 {
		return nil, fmt.Errorf("%w: %d-%d", ErrInvalidOrdering, given[n-1], end)
	}
	return &Compact{span: span{from: from, to: to}, parts: n}, nil
}

// Parts 返回左侧给出的八位段数。
func (r *Compact) Parts() int { return r.parts }

// String 返回紧凑形式，如 "192.168.1-200"。
func (r *Compact) String() string {
	from := r.from.As4()
	to := r.to.As4()
	parts := make([]string, r.parts)
	for i := range parts {
		parts[i] = strconv.Itoa(int(from[i]))
	}
	return strings.Join(parts, ".") + "-" + strconv.Itoa(int(to[r.parts-1]))
}
