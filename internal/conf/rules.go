package conf

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/omeyang/ipkit/pkg/xip"
)

// Format 定义规则文件格式。
type Format string

// 支持的规则文件格式。
const (
	// FormatYAML YAML 格式（推荐）。
	FormatYAML Format = "yaml"

	// FormatJSON JSON 格式。
	FormatJSON Format = "json"
)

// RuleFile 对应规则文件的顶层结构。
//
// 示例（YAML）：
//
//	flags: [compact, non-decimal]
//	groups:
//	  office:
//	    description: 办公网段
//	    ranges:
//	      - 10.0.0.0/8
//	      - 192.168.1-20
//	  lab:
//	    pairs:
//	      - start: 2001:db8::1
//	        end: 2001:db8::ff
type RuleFile struct {
	// Flags 全局解析开关名列表，作用于所有 ranges 条目。
	// 可选值：port、zone、non-decimal、compact。
	Flags []string `koanf:"flags" json:"flags" yaml:"flags"`

	// Groups 命名区间组。组名不应包含 '.'（koanf 路径分隔符）。
	Groups map[string]Group `koanf:"groups" json:"groups" yaml:"groups"`
}

// Group 一组命名的 IP 区间定义。
type Group struct {
	// Description 组描述，仅用于展示。
	Description string `koanf:"description" json:"description" yaml:"description"`

	// Ranges 区间文本列表，按全局 Flags 解析。
	Ranges []string `koanf:"ranges" json:"ranges" yaml:"ranges"`

	// Pairs 显式起止地址对列表，不受 Flags 影响。
	Pairs []xip.WireRange `koanf:"pairs" json:"pairs" yaml:"pairs"`
}

// Issue 描述规则文件中单个条目的解析问题。
type Issue struct {
	// Group 条目所在的组名。
	Group string

	// Entry 条目原文。
	Entry string

	// Err 具体错误，可用 errors.Is 匹配 xip 哨兵错误。
	Err error
}

// Error 实现 error 接口。
func (i Issue) Error() string {
	return fmt.Sprintf("group %q: entry %q: %v", i.Group, i.Entry, i.Err)
}

// Unwrap 返回底层错误。
func (i Issue) Unwrap() error {
	return i.Err
}

// Rules 已加载的规则文件。
// 所有方法并发安全；Reload 在解析成功后原子替换内容。
type Rules struct {
	path   string
	format Format

	mu    sync.RWMutex
	file  RuleFile
	flags xip.Flags
}

// Load 从文件加载规则。
// 根据扩展名自动检测格式（.yaml/.yml 或 .json）。
// 条目级别的区间解析错误不会导致加载失败，通过 [Rules.Validate] 获取。
func Load(path string) (*Rules, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	file, flags, err := decode(data, format)
	if err != nil {
		return nil, err
	}

	return &Rules{path: path, format: format, file: file, flags: flags}, nil
}

// LoadBytes 从字节数据加载规则，需显式指定格式。
// 空数据会得到一份空规则，与 Load 读取空文件的行为一致。
func LoadBytes(data []byte, format Format) (*Rules, error) {
	if !isValidFormat(format) {
		return nil, ErrUnsupportedFormat
	}

	file, flags, err := decode(data, format)
	if err != nil {
		return nil, err
	}

	return &Rules{path: "", format: format, file: file, flags: flags}, nil
}

// Reload 重新读取并解析规则文件。
// 仅对从文件加载的规则有效；解析失败时保留旧内容。
func (r *Rules) Reload() error {
	if r.path == "" {
		return ErrNotFromFile
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	file, flags, err := decode(data, r.format)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.file = file
	r.flags = flags
	r.mu.Unlock()

	return nil
}

// Path 返回规则文件路径。从字节数据加载时为空字符串。
func (r *Rules) Path() string {
	return r.path
}

// Format 返回规则文件格式。
func (r *Rules) Format() Format {
	return r.format
}

// Flags 返回由 flags 列表解析得到的解析开关位集。
func (r *Rules) Flags() xip.Flags {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.flags
}

// GroupNames 按字典序返回所有组名。
func (r *Rules) GroupNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.file.Groups))
}

// Group 返回指定名称的组定义。
func (r *Rules) Group(name string) (Group, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.file.Groups[name]
	return g, ok
}

// Compile 逐条解析所有组的区间定义，返回每组解析成功的区间。
// 失败条目以 Issue 形式返回，不会中断其余条目；
// 组按名称字典序处理，Issue 顺序确定。
func (r *Rules) Compile() (map[string][]xip.Range, []Issue) {
	r.mu.RLock()
	file := r.file
	flags := r.flags
	r.mu.RUnlock()

	out := make(map[string][]xip.Range, len(file.Groups))
	var issues []Issue

	for _, name := range slices.Sorted(maps.Keys(file.Groups)) {
		g := file.Groups[name]
		ranges := make([]xip.Range, 0, len(g.Ranges)+len(g.Pairs))

		for _, s := range g.Ranges {
			rg, err := xip.Parse(s, flags)
			if err != nil {
				issues = append(issues, Issue{Group: name, Entry: s, Err: err})
				continue
			}
			ranges = append(ranges, rg)
		}

		for _, p := range g.Pairs {
			rg, err := p.StartEnd()
			if err != nil {
				issues = append(issues, Issue{Group: name, Entry: p.String(), Err: err})
				continue
			}
			ranges = append(ranges, rg)
		}

		out[name] = ranges
	}

	return out, issues
}

// Validate 校验所有区间条目，返回全部问题。
// 返回空切片表示所有条目均可解析。
func (r *Rules) Validate() []Issue {
	_, issues := r.Compile()
	return issues
}

// FlagsFromNames 将解析开关名列表转换为 [xip.Flags] 位集。
// 开关名不区分大小写；未知名称返回 ErrUnknownFlag。
func FlagsFromNames(names []string) (xip.Flags, error) {
	var flags xip.Flags
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "port":
			flags |= xip.AllowPort
		case "zone":
			flags |= xip.AllowZone
		case "non-decimal":
			flags |= xip.AllowNonDecimal
		case "compact":
			flags |= xip.AllowCompact
		default:
			return 0, fmt.Errorf("%w: %q", ErrUnknownFlag, name)
		}
	}
	return flags, nil
}

// =============================================================================
// 内部辅助函数
// =============================================================================

// detectFormat 根据文件扩展名检测规则文件格式。
func detectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %s", ErrUnsupportedFormat, ext)
	}
}

// isValidFormat 检查格式是否有效。
func isValidFormat(format Format) bool {
	switch format {
	case FormatYAML, FormatJSON:
		return true
	default:
		return false
	}
}

// decode 解析规则文件内容并解析全局开关。
func decode(data []byte, format Format) (RuleFile, xip.Flags, error) {
	var file RuleFile

	if len(data) > 0 {
		var parser koanf.Parser
		switch format {
		case FormatYAML:
			parser = yaml.Parser()
		case FormatJSON:
			parser = json.Parser()
		default:
			return file, 0, ErrUnsupportedFormat
		}

		k := koanf.New(".")
		if err := k.Load(rawbytes.Provider(data), parser); err != nil {
			return file, 0, fmt.Errorf("%w: %w", ErrParseFailed, err)
		}
		if err := k.Unmarshal("", &file); err != nil {
			return file, 0, fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
		}
	}

	flags, err := FlagsFromNames(file.Flags)
	if err != nil {
		return file, 0, err
	}

	return file, flags, nil
}
