// Package xip 提供 IP 地址范围的统一表示、解析与转换。
//
// # 范围表示
//
// 同一段连续地址可以有四种字符串写法，对应四个表示类型：
//
//	*StartEnd  显式范围   "10.0.0.1-10.0.0.9"
//	*Subnet    CIDR 子网  "10.0.0.0/24"（规范形式）
//	*Pattern   通配模式   "10.0.*.*"、"2001:db8::*"
//	*Compact   紧凑范围   "10.0.1-200"（仅 IPv4）
//
// 四种类型都实现 [Range] 接口，共享同一能力集：起止地址、定宽可比较
// 字符串、地址数量、网络前缀、子网掩码（仅 IPv4）、反向 DNS 区域、
// IANA 特殊用途分类与互相转换。表示类型只决定字符串形式与构造约束，
// 不改变区间的数学语义。
//
// # 解析
//
// [Parse] 按固定优先级分派上述语法。可选形式（端口后缀、IPv6 zone ID、
// 非十进制八位段、紧凑语法）默认关闭，用 [Flags] 按位启用：
//
//	r, err := xip.Parse("192.168.1-200", xip.AllowCompact)
//
// # 规范化
//
// 构造与解析只做两类规范化：IPv4-mapped IPv6 地址（::ffff:a.b.c.d）
// 脱映射为纯 IPv4；zone ID 剥离，不参与范围运算。除此之外不做任何
// 静默宽恕：越界八位段、起止倒序、混合地址族、主机位非零的 CIDR
// 一律报错，错误包装 [ErrMalformedInput] 等四类哨兵之一。
//
// # 集合运算
//
// [Merge]、[Overlaps]、[ContainsRange]、[Subnets] 提供跨范围的集合运算，
// [IPRangeOf] 与 [FromIPRange] 负责与 go4.org/netipx 互操作，
// [Addrs] 与 [Hosts] 提供地址级迭代。
//
// 所有范围类型一经构造不可变，可在 goroutine 间安全共享。
package xip
