package xip

// Flags 控制 [Parse] 在基础语法之外额外接受哪些输入形式。
// 零值表示严格模式：只接受标准的地址、CIDR、显式范围与通配模式。
// 多个标志可按位组合：AllowPort | AllowCompact。
type Flags uint8

const (
	// AllowPort 允许地址携带端口后缀并在解析时剥离，
	// 如 "1.2.3.4:80" 与 "[2001:db8::1]:443"。端口必须在 0~65535 之间。
	AllowPort Flags = 1 << iota

	// AllowZone 允许 IPv6 zone ID 后缀并在解析时剥离，如 "fe80::1%eth0"。
	// zone 只对单地址输入有意义，不参与范围运算。
	AllowZone

	// AllowNonDecimal 允许 IPv4 八位段使用十六进制（"0x1A"）或
	// 带前导零的八进制（"017"）写法，按 inet_aton 的约定解释。
	AllowNonDecimal

	// AllowCompact 允许 IPv4 紧凑范围语法，如 "192.168.1-200"。
	AllowCompact
)

// Has 报告 f 是否同时包含 mask 中的全部标志。
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}
