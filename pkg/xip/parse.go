package xip

import (
	"fmt"
	"math/bits"
	"net/netip"
	"strconv"
	"strings"
)

// Parse 把字符串解析为 IP 范围。按固定优先级分派语法：
//
//	显式范围   "10.0.0.1-10.0.0.9"（含 '-'，两侧为完整地址）
//	紧凑范围   "10.0.1-200"（含 '-'，右侧为单个数值，需 AllowCompact）
//	CIDR 子网  "10.0.0.0/24"、"2001:db8::/32"
//	点分掩码   "10.0.0.0/255.255.255.0"（仅 IPv4）
//	通配模式   "10.0.*.*"、"2001:db8::*"
//	单地址     "10.0.0.1"（内部表示为零通配段的模式）
//
// flags 控制端口、zone ID、非十进制八位段与紧凑语法这些可选形式，
// 见 [Flags]。返回的错误可用 errors.Is 与包级哨兵错误比对。
func Parse(s string, flags Flags) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedInput)
	}

	// zone ID 只对单地址有意义，带 '%' 的输入一律走单地址路径，
	// 避免 zone 文本里的 '-' 与 '/' 干扰语法分派。
	if strings.ContainsRune(s, '%') {
		if !flags.Has(AllowZone) {
			return nil, fmt.Errorf("%w: zone ID in %q requires AllowZone", ErrMalformedInput, s)
		}
		return parseSingle(s, flags)
	}

	if strings.ContainsRune(s, '-') {
		if r, err, handled := parseDashed(s, flags); handled {
			return r, err
		}
		// 两侧都不是地址、也不匹配紧凑语法：继续尝试其余分支。
	}
	if strings.ContainsRune(s, '/') {
		return parseSlashed(s, flags)
	}
	if strings.ContainsRune(s, '*') {
		return parsePattern(s, flags)
	}
	return parseSingle(s, flags)
}

// MustParse 是 [Parse] 的 panic 版本，适合初始化已知合法的字面量。
func MustParse(s string, flags Flags) Range {
	r, err := Parse(s, flags)
	if err != nil {
		panic(err)
	}
	return r
}

// ParseAll 逐个解析并返回全部范围，任何一项失败立即返回带下标的错误。
func ParseAll(inputs []string, flags Flags) ([]Range, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	out := make([]Range, 0, len(inputs))
	for i, s := range inputs {
		r, err := Parse(s, flags)
		if err != nil {
			return nil, fmt.Errorf("parse range [%d] %q: %w", i, s, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// parseDashed 处理含 '-' 的输入：显式范围，或启用时的紧凑范围。
// 两侧都无法解析且不匹配紧凑语法时 handled 为 false，交回上层继续分派。
func parseDashed(s string, flags Flags) (Range, error, bool) {
	left, right, _ := strings.Cut(s, "-")
	left, right = strings.TrimSpace(left), strings.TrimSpace(right)

	from, fromErr := parseAddrToken(left, flags)
	to, toErr := parseAddrToken(right, flags)
	if fromErr == nil && toErr == nil {
		r, err := NewStartEnd(from, to)
		if err != nil {
			return nil, err, true
		}
		return r, nil, true
	}

	if flags.Has(AllowCompact) {
		if c, err, ok := parseCompact(left, right, flags); ok {
			if err != nil {
				return nil, err, true
			}
			return c, nil, true
		}
	}

	switch {
	case fromErr == nil:
		return nil, fmt.Errorf("%w: invalid range end %q", ErrMalformedInput, right), true
	case toErr == nil:
		return nil, fmt.Errorf("%w: invalid range start %q", ErrMalformedInput, left), true
	default:
		return nil, nil, false
	}
}

// parseCompact 尝试按紧凑语法解析 '-' 两侧的文本。
// 形状不匹配（段数超限、存在非法八位段）时 ok 为 false；
// 形状匹配后的序关系错误属于紧凑语法内部错误，不再回退。
func parseCompact(left, right string, flags Flags) (*Compact, error, bool) {
	nonDec := flags.Has(AllowNonDecimal)
	parts := strings.Split(left, ".")
	if len(parts) > 4 {
		return nil, nil, false
	}
	given := make([]byte, len(parts))
	for i, p := range parts {
		v, ok := parseOctet(p, nonDec)
		if !ok {
			return nil, nil, false
		}
		given[i] = v
	}
	end, ok := parseOctet(right, nonDec)
	if !ok {
		return nil, nil, false
	}
	c, err := NewCompact(given, end)
	return c, err, true
}

// parseSlashed 解析 '/' 语法：CIDR 前缀或点分掩码。
func parseSlashed(s string, flags Flags) (Range, error) {
	addrPart, suffix, _ := strings.Cut(s, "/")
	addrPart, suffix = strings.TrimSpace(addrPart), strings.TrimSpace(suffix)

	if strings.ContainsRune(suffix, '.') {
		return parseWithMask(addrPart, suffix, flags)
	}

	// 前缀位数须为无前导零的纯十进制，带符号写法一律拒绝。
	if len(suffix) > 1 && suffix[0] == '0' {
		return nil, fmt.Errorf("%w: invalid prefix length %q", ErrMalformedInput, suffix)
	}
	prefixLen, err := strconv.ParseUint(suffix, 10, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid prefix length %q", ErrMalformedInput, suffix)
	}
	bits := int(prefixLen)
	addr, err := parseAddrRaw(addrPart, flags)
	if err != nil {
		return nil, err
	}
	// IPv4-mapped 网络地址携带的是 128 位空间的前缀位数，折算回 IPv4。
	if addr.Is4In6() {
		if bits < 96 {
			return nil, fmt.Errorf("%w: prefix length /%d too short for IPv4-mapped address", ErrMalformedInput, bits)
		}
		addr = addr.Unmap()
		bits -= 96
	}
	sub, err := NewSubnet(addr, bits)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// parseWithMask 解析 "network/mask" 点分掩码写法，仅 IPv4。
// 掩码必须是连续的：高位全 1、低位全 0。
func parseWithMask(addrPart, maskPart string, flags Flags) (Range, error) {
	network, err := parseAddrToken(addrPart, flags)
	if err != nil {
		return nil, err
	}
	mask, err := parseAddrToken(maskPart, 0)
	if err != nil {
		return nil, err
	}
	if !network.Is4() || !mask.Is4() {
		return nil, fmt.Errorf("%w: dotted mask notation is IPv4-only", ErrMalformedInput)
	}
	maskVal := mustUint32(mask)
	if inverted := ^maskVal; inverted&(inverted+1) != 0 {
		return nil, fmt.Errorf("%w: non-contiguous mask %s", ErrMalformedInput, mask)
	}
	sub, err := NewSubnet(network, bits.OnesCount32(maskVal))
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// parsePattern 解析尾部通配模式。通配符必须整段出现且只出现在末尾。
func parsePattern(s string, flags Flags) (Range, error) {
	if strings.ContainsRune(s, ':') {
		return parsePattern6(s)
	}
	return parsePattern4(s, flags)
}

func parsePattern4(s string, flags Flags) (Range, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: IPv4 pattern needs 4 dot-separated parts, got %q", ErrMalformedInput, s)
	}
	nonDec := flags.Has(AllowNonDecimal)
	var from, to [4]byte
	seenStar := false
	for i, p := range parts {
		if p == "*" {
			seenStar = true
			from[i], to[i] = 0, 0xFF
			continue
		}
		if seenStar {
			return nil, fmt.Errorf("%w: wildcard must be trailing in %q", ErrMalformedInput, s)
		}
		v, ok := parseOctet(p, nonDec)
		if !ok {
			return nil, fmt.Errorf("%w: invalid octet %q in %q", ErrMalformedInput, p, s)
		}
		from[i], to[i] = v, v
	}
	p, err := NewPattern(netip.AddrFrom4(from), netip.AddrFrom4(to))
	if err != nil {
		return nil, err
	}
	return p, nil
}

func parsePattern6(s string) (Range, error) {
	seenStar := false
	for _, p := range strings.Split(s, ":") {
		if p == "*" {
			seenStar = true
			continue
		}
		if strings.ContainsRune(p, '*') {
			return nil, fmt.Errorf("%w: wildcard must replace a whole group in %q", ErrMalformedInput, s)
		}
		if seenStar && p != "" {
			return nil, fmt.Errorf("%w: wildcard must be trailing in %q", ErrMalformedInput, s)
		}
	}
	// 把通配组替换为取值上下界后借道标准解析，零段压缩等规则自然生效。
	from, err := netip.ParseAddr(strings.ReplaceAll(s, "*", "0"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a valid IPv6 pattern", ErrMalformedInput, s)
	}
	to, err := netip.ParseAddr(strings.ReplaceAll(s, "*", "ffff"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a valid IPv6 pattern", ErrMalformedInput, s)
	}
	if from.Is4In6() || to.Is4In6() {
		return nil, fmt.Errorf("%w: wildcard not supported for IPv4-mapped form %q", ErrMalformedInput, s)
	}
	p, err := NewPattern(from, to)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// parseSingle 解析单个地址，内部表示为零通配段的模式。
func parseSingle(s string, flags Flags) (Range, error) {
	addr, err := parseAddrToken(s, flags)
	if err != nil {
		return nil, err
	}
	p, err := NewPattern(addr, addr)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// parseAddrToken 解析单个地址记号并把 IPv4-mapped IPv6 脱映射为纯 IPv4。
func parseAddrToken(s string, flags Flags) (netip.Addr, error) {
	addr, err := parseAddrRaw(s, flags)
	if err != nil {
		return netip.Addr{}, err
	}
	return addr.Unmap(), nil
}

// parseAddrRaw 解析单个地址记号：按标志剥离端口与 zone ID，
// 支持非十进制八位段；保留 IPv4-mapped 形式，由调用方决定如何折算。
func parseAddrRaw(s string, flags Flags) (netip.Addr, error) {
	if s == "" {
		return netip.Addr{}, fmt.Errorf("%w: empty address", ErrMalformedInput)
	}
	if flags.Has(AllowPort) {
		var err error
		if s, err = stripPort(s); err != nil {
			return netip.Addr{}, err
		}
	}
	if i := strings.IndexByte(s, '%'); i >= 0 {
		if !flags.Has(AllowZone) {
			return netip.Addr{}, fmt.Errorf("%w: zone ID in %q requires AllowZone", ErrMalformedInput, s)
		}
		if i == 0 || i == len(s)-1 {
			return netip.Addr{}, fmt.Errorf("%w: empty address or zone in %q", ErrMalformedInput, s)
		}
		s = s[:i]
	}
	if flags.Has(AllowNonDecimal) && !strings.ContainsRune(s, ':') {
		if addr, ok := parseNonDecimal4(s); ok {
			return addr, nil
		}
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %q is not a valid IP address", ErrMalformedInput, s)
	}
	return addr.WithZone(""), nil
}

// stripPort 剥离端口后缀。支持 "[v6]:port"、"[v6]" 与 "v4:port" 三种写法；
// 纯 IPv6 文本中的 ':' 不会被误判为端口分隔符。
func stripPort(s string) (string, error) {
	if strings.HasPrefix(s, "[") {
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return "", fmt.Errorf("%w: unclosed bracket in %q", ErrMalformedInput, s)
		}
		host, rest := s[1:end], s[end+1:]
		if rest == "" {
			return host, nil
		}
		if !strings.HasPrefix(rest, ":") {
			return "", fmt.Errorf("%w: unexpected %q after bracket", ErrMalformedInput, rest)
		}
		if err := checkPort(rest[1:]); err != nil {
			return "", err
		}
		return host, nil
	}
	// 恰好一个 ':' 且端口位全为数字时按 "v4:port" 处理，
	// 其余情况原样返回，交给地址解析定夺。
	if strings.Count(s, ":") == 1 {
		host, port, _ := strings.Cut(s, ":")
		if isDigits(port) {
			if err := checkPort(port); err != nil {
				return "", err
			}
			return host, nil
		}
	}
	return s, nil
}

// checkPort 校验端口文本在 0~65535 之间。
func checkPort(port string) error {
	if !isDigits(port) {
		return fmt.Errorf("%w: invalid port %q", ErrMalformedInput, port)
	}
	if v, err := strconv.Atoi(port); err != nil || v > 65535 {
		return fmt.Errorf("%w: port %q out of range", ErrMalformedInput, port)
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// parseNonDecimal4 按 inet_aton 的段约定解析点分 IPv4：
// "0x" 前缀为十六进制，前导 "0" 为八进制，其余为十进制。
// 不匹配四段点分形状时 ok 为 false，回退到标准解析。
func parseNonDecimal4(s string) (netip.Addr, bool) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return netip.Addr{}, false
	}
	var b [4]byte
	for i, p := range parts {
		v, ok := parseOctet(p, true)
		if !ok {
			return netip.Addr{}, false
		}
		b[i] = v
	}
	return netip.AddrFrom4(b), true
}

// parseOctet 解析一个 0~255 的八位段。nonDecimal 为真时按 inet_aton
// 约定接受 "0x1A"、"017" 等写法，否则要求无前导零的纯十进制。
func parseOctet(p string, nonDecimal bool) (byte, bool) {
	if p == "" {
		return 0, false
	}
	if !nonDecimal {
		if len(p) > 1 && p[0] == '0' {
			return 0, false
		}
		v, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return 0, false
		}
		return byte(v), true
	}
	base := 10
	switch {
	case strings.HasPrefix(p, "0x") || strings.HasPrefix(p, "0X"):
		p, base = p[2:], 16
	case len(p) > 1 && p[0] == '0':
		p, base = p[1:], 8
	}
	if p == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(p, base, 8)
	if err != nil {
		return 0, false
	}
	return byte(v), true
}
