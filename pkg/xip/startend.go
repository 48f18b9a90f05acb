package xip

import "net/netip"

// StartEnd 是显式起止范围，对应 "start-end" 语法。
// 它是最通用的表示：任何连续区间都能表达，不要求对齐到任何边界。
type StartEnd struct {
	span
}

var _ Range = (*StartEnd)(nil)

// NewStartEnd 用一对端点构造显式范围。
// 两端地址族必须一致，from 不得大于 to。
// IPv4-mapped IPv6 地址脱映射，zone ID 剥离。
func NewStartEnd(from, to netip.Addr) (*StartEnd, error) {
	from, to, err := checkPair(from, to)
	if err != nil {
		return nil, err
	}
	return &StartEnd{span: span{from: from, to: to}}, nil
}

// String 返回 "start-end" 形式，如 "10.0.0.1-10.0.0.9"。
func (r *StartEnd) String() string {
	return r.from.String() + "-" + r.to.String()
}
