package xip

import "errors"

// 包级哨兵错误。所有导出函数返回的错误都包装自以下四类之一，
// 调用方可用 errors.Is 判断失败类别。
var (
	// ErrMalformedInput 表示输入不匹配任何受支持的范围语法，
	// 或地址、端口、zone 本身格式非法。
	ErrMalformedInput = errors.New("xip: malformed input")

	// ErrFamilyMismatch 表示在同一范围内混合了 IPv4 与 IPv6 地址。
	ErrFamilyMismatch = errors.New("xip: mixed address families")

	// ErrInvalidOrdering 表示范围的起始地址大于结束地址。
	ErrInvalidOrdering = errors.New("xip: range start greater than end")

	// ErrUnsupported 表示操作对当前值没有定义，
	// 例如对 IPv6 范围求点分子网掩码，或把非 CIDR 对齐的范围转成子网。
	ErrUnsupported = errors.New("xip: unsupported operation")
)
