package xip

import "fmt"

// WireRange 是范围的传输形式：一对标准写法的字符串端点，
// 可直接作为 JSON/BSON/YAML 字段嵌入配置文件与文档。
// 选用显式端点而非原始语法字符串，让持久化形式与解析标志解耦：
// 读取方无需知道写入方启用过哪些可选语法。
type WireRange struct {
	Start string `json:"start" bson:"start" yaml:"start"`
	End   string `json:"end" bson:"end" yaml:"end"`
}

// WireRangeOf 把范围转换为传输形式。
func WireRangeOf(r Range) (WireRange, error) {
	if r == nil {
		return WireRange{}, fmt.Errorf("%w: nil range", ErrMalformedInput)
	}
	return WireRange{Start: r.From().String(), End: r.To().String()}, nil
}

// StartEnd 把传输形式还原为显式范围。端点必须是标准地址写法，
// 不接受任何可选语法。
func (w WireRange) StartEnd() (*StartEnd, error) {
	from, err := parseAddrToken(w.Start, 0)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	to, err := parseAddrToken(w.End, 0)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}
	return NewStartEnd(from, to)
}

// IsZero 报告传输形式是否为零值。
func (w WireRange) IsZero() bool {
	return w.Start == "" && w.End == ""
}

// String 返回 "start-end" 形式。
func (w WireRange) String() string {
	return w.Start + "-" + w.End
}
