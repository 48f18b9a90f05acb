package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/ipkit/internal/conf"
	"github.com/omeyang/ipkit/pkg/xip"
)

// exitError 表示需要非零退出码但已完成输出的场景。
// 命令内部已完成所有输出，main 只需设置退出码。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// usageError 表示参数使用错误，main 统一映射为退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// isCLIUsageError 识别 CLI 框架自身产生的参数错误（未知命令、未知 flag 等）。
func isCLIUsageError(err error) bool {
	if _, ok := err.(cli.ExitCoder); ok {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "flag provided but not defined") ||
		strings.Contains(msg, "No help topic for")
}

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createInfoCommand(),
		createConvertCommand(),
		createCheckCommand(),
		createRDNSCommand(),
		createTypeCommand(),
		createMergeCommand(),
		createBatchCommand(),
		createWatchCommand(),
	}
}

// createInfoCommand 创建 info 子命令（默认命令）。
func createInfoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Aliases:   []string{"i"},
		Usage:     "查看区间详情",
		ArgsUsage: "<range>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) != 1 {
				return &usageError{msg: "info 命令需要且仅需要一个区间参数"}
			}
			return cmdInfo(args[0], parseFlags(cmd), cmd.Bool("json"))
		},
	}
}

// createConvertCommand 创建 convert 子命令。
func createConvertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Aliases:   []string{"c"},
		Usage:     "转换区间表示形式",
		ArgsUsage: "<range>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "to",
				Aliases:  []string{"t"},
				Usage:    "目标表示 (startend/cidr/pattern)",
				Required: true,
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) != 1 {
				return &usageError{msg: "convert 命令需要且仅需要一个区间参数"}
			}
			return cmdConvert(args[0], cmd.String("to"), parseFlags(cmd), cmd.Bool("json"))
		},
	}
}

// createCheckCommand 创建 check 子命令。
func createCheckCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Aliases:   []string{"k"},
		Usage:     "检查地址是否落在区间内",
		ArgsUsage: "<range> <addr>...",
		Action: func(_ context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) < 2 {
				return &usageError{msg: "check 命令需要一个区间和至少一个地址参数"}
			}
			return cmdCheck(args[0], args[1:], parseFlags(cmd), cmd.Bool("json"))
		},
	}
}

// createRDNSCommand 创建 rdns 子命令。
func createRDNSCommand() *cli.Command {
	return &cli.Command{
		Name:      "rdns",
		Aliases:   []string{"r"},
		Usage:     "输出区间的反向解析域",
		ArgsUsage: "<range>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) != 1 {
				return &usageError{msg: "rdns 命令需要且仅需要一个区间参数"}
			}
			return cmdRDNS(args[0], parseFlags(cmd), cmd.Bool("json"))
		},
	}
}

// createTypeCommand 创建 type 子命令。
func createTypeCommand() *cli.Command {
	return &cli.Command{
		Name:      "type",
		Aliases:   []string{"t"},
		Usage:     "输出区间的 IANA 特殊用途分类",
		ArgsUsage: "<range>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) != 1 {
				return &usageError{msg: "type 命令需要且仅需要一个区间参数"}
			}
			return cmdType(args[0], parseFlags(cmd), cmd.Bool("json"))
		},
	}
}

// createMergeCommand 创建 merge 子命令。
func createMergeCommand() *cli.Command {
	return &cli.Command{
		Name:      "merge",
		Aliases:   []string{"m"},
		Usage:     "合并多个区间为最小不相交集合",
		ArgsUsage: "<range>...",
		Action: func(_ context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) == 0 {
				return &usageError{msg: "merge 命令需要至少一个区间参数"}
			}
			return cmdMerge(args, parseFlags(cmd), cmd.Bool("json"))
		},
	}
}

// createBatchCommand 创建 batch 子命令。
func createBatchCommand() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Aliases:   []string{"b"},
		Usage:     "批量解析并分类区间",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"n"},
				Usage:   "并发工作协程数",
				Value:   runtime.NumCPU(),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) != 1 {
				return &usageError{msg: `batch 命令需要一个输入文件参数（"-" 表示 stdin）`}
			}
			logger, cleanup, err := buildLogger(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return cmdBatch(ctx, logger, args[0], cmd.Int("jobs"), parseFlags(cmd), cmd.Bool("json"))
		},
	}
}

// createWatchCommand 创建 watch 子命令。
func createWatchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Aliases:   []string{"w"},
		Usage:     "监视规则文件并持续校验",
		ArgsUsage: "<rules-file>",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "变更防抖时间",
				Value: 200 * time.Millisecond,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) != 1 {
				return &usageError{msg: "watch 命令需要一个规则文件参数"}
			}
			logger, cleanup, err := buildLogger(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return cmdWatch(ctx, logger, args[0], cmd.Duration("debounce"))
		},
	}
}

// infoOutput info 命令的输出结构。
type infoOutput struct {
	Input    string        `json:"input"`
	Text     string        `json:"text"`
	Variant  string        `json:"variant"`
	Family   string        `json:"family"`
	Type     string        `json:"type"`
	Range    xip.WireRange `json:"range"`
	FromFull string        `json:"from_full"`
	ToFull   string        `json:"to_full"`
	Prefix   int           `json:"prefix"`
	Mask     string        `json:"mask,omitempty"`
	Size     string        `json:"size"`
	Zones    []string      `json:"reverse_zones"`
}

// cmdInfo 查看区间详情。
func cmdInfo(input string, flags xip.Flags, jsonOut bool) error {
	r, err := xip.Parse(input, flags)
	if err != nil {
		return err
	}
	wire, err := xip.WireRangeOf(r)
	if err != nil {
		return err
	}

	out := infoOutput{
		Input:    input,
		Text:     r.String(),
		Variant:  variantName(r),
		Family:   r.Family().String(),
		Type:     r.Type().String(),
		Range:    wire,
		FromFull: r.FromFull(),
		ToFull:   r.ToFull(),
		Prefix:   r.NetworkPrefix(),
		Size:     r.Size().String(),
		Zones:    r.ReverseDNSZones(),
	}
	if mask, mErr := r.SubnetMask(); mErr == nil {
		out.Mask = mask.String()
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("区间:     %s\n", out.Text)
	fmt.Printf("表示:     %s\n", out.Variant)
	fmt.Printf("家族:     %s\n", out.Family)
	fmt.Printf("IANA:     %s\n", out.Type)
	fmt.Printf("起始:     %s (%s)\n", out.Range.Start, out.FromFull)
	fmt.Printf("结束:     %s (%s)\n", out.Range.End, out.ToFull)
	fmt.Printf("覆盖前缀: /%d\n", out.Prefix)
	if out.Mask != "" {
		fmt.Printf("子网掩码: %s\n", out.Mask)
	}
	fmt.Printf("大小:     %s\n", out.Size)
	for _, z := range out.Zones {
		fmt.Printf("反向域:   %s\n", z)
	}
	return nil
}

// cmdConvert 转换区间表示形式。
func cmdConvert(input, target string, flags xip.Flags, jsonOut bool) error {
	r, err := xip.Parse(input, flags)
	if err != nil {
		return err
	}

	var converted xip.Range
	switch strings.ToLower(target) {
	case "startend", "range":
		converted = r.AsStartEnd()
	case "cidr", "subnet":
		s, cErr := r.AsSubnet()
		if cErr != nil {
			return cErr
		}
		converted = s
	case "pattern", "wildcard":
		p, cErr := r.AsPattern()
		if cErr != nil {
			return cErr
		}
		converted = p
	default:
		return &usageError{msg: fmt.Sprintf("未知转换目标 %q（可选 startend/cidr/pattern）", target)}
	}

	if jsonOut {
		return printJSON(struct {
			Input string `json:"input"`
			To    string `json:"to"`
			Text  string `json:"text"`
		}{Input: input, To: strings.ToLower(target), Text: converted.String()})
	}

	fmt.Println(converted.String())
	return nil
}

// checkResult check 命令单个地址的结果。
type checkResult struct {
	Addr     string `json:"addr"`
	Contains bool   `json:"contains"`
}

// cmdCheck 检查地址是否落在区间内。
// 设计决策: 存在未命中地址时返回退出码 1（通过 exitError），
// 使脚本能将 ipctl check 直接用作成员判断。
func cmdCheck(input string, addrs []string, flags xip.Flags, jsonOut bool) error {
	r, err := xip.Parse(input, flags)
	if err != nil {
		return err
	}

	results := make([]checkResult, 0, len(addrs))
	misses := 0

	for _, raw := range addrs {
		// 地址参数同样走区间解析，享受 port/zone/non-decimal 开关
		one, aErr := xip.Parse(raw, flags)
		if aErr != nil {
			return fmt.Errorf("解析地址 %q: %w", raw, aErr)
		}
		if one.From() != one.To() {
			return &usageError{msg: fmt.Sprintf("%q 是区间而非单个地址", raw)}
		}
		hit := r.Contains(one.From())
		if !hit {
			misses++
		}
		results = append(results, checkResult{Addr: one.From().String(), Contains: hit})
	}

	if jsonOut {
		if err := printJSON(struct {
			Range   string        `json:"range"`
			Results []checkResult `json:"results"`
		}{Range: r.String(), Results: results}); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			if res.Contains {
				fmt.Printf("%s: 包含\n", res.Addr)
			} else {
				fmt.Printf("%s: 不包含\n", res.Addr)
			}
		}
	}

	if misses > 0 {
		return &exitError{code: 1}
	}
	return nil
}

// cmdRDNS 输出区间的反向解析域。
func cmdRDNS(input string, flags xip.Flags, jsonOut bool) error {
	r, err := xip.Parse(input, flags)
	if err != nil {
		return err
	}

	zones := r.ReverseDNSZones()
	if jsonOut {
		return printJSON(struct {
			Range string   `json:"range"`
			Zones []string `json:"zones"`
		}{Range: r.String(), Zones: zones})
	}
	for _, z := range zones {
		fmt.Println(z)
	}
	return nil
}

// cmdType 输出区间的 IANA 特殊用途分类。
func cmdType(input string, flags xip.Flags, jsonOut bool) error {
	r, err := xip.Parse(input, flags)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(struct {
			Range string `json:"range"`
			Type  string `json:"type"`
		}{Range: r.String(), Type: r.Type().String()})
	}
	fmt.Println(r.Type().String())
	return nil
}

// cmdMerge 合并多个区间为最小不相交集合。
func cmdMerge(inputs []string, flags xip.Flags, jsonOut bool) error {
	ranges, err := xip.ParseAll(inputs, flags)
	if err != nil {
		return err
	}

	merged, err := xip.Merge(ranges...)
	if err != nil {
		return err
	}

	if jsonOut {
		out := make([]xip.WireRange, 0, len(merged))
		for _, m := range merged {
			w, wErr := xip.WireRangeOf(m)
			if wErr != nil {
				return wErr
			}
			out = append(out, w)
		}
		return printJSON(out)
	}

	for _, m := range merged {
		fmt.Println(m.String())
	}
	return nil
}

// cmdWatch 监视规则文件，变更后自动重载并重新校验，直到 ctx 取消。
func cmdWatch(ctx context.Context, logger *slog.Logger, path string, debounce time.Duration) error {
	rules, err := conf.Load(path)
	if err != nil {
		return err
	}

	report := func(r *conf.Rules, issues []conf.Issue, err error) {
		if err != nil {
			logger.Error("规则重载失败，沿用旧规则", "path", path, "error", err)
			return
		}
		groups, _ := r.Compile()
		total := 0
		for _, rs := range groups {
			total += len(rs)
		}
		logger.Info("规则已加载", "path", path, "groups", len(groups), "ranges", total, "issues", len(issues))
		for _, issue := range issues {
			logger.Warn("条目无效", "group", issue.Group, "entry", issue.Entry, "error", issue.Err)
		}
	}

	// 初始加载同样走一次校验上报
	report(rules, rules.Validate(), nil)

	w, err := conf.Watch(rules, report, conf.WithDebounce(debounce))
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	w.StartAsync()
	<-ctx.Done()
	logger.Info("停止监视", "path", path)
	return nil
}

// parseFlags 将全局布尔开关映射为解析开关位集。
func parseFlags(cmd *cli.Command) xip.Flags {
	return gatherFlags(cmd.Bool("port"), cmd.Bool("zone"), cmd.Bool("non-decimal"), cmd.Bool("compact"))
}

// gatherFlags 组装解析开关位集。
func gatherFlags(port, zone, nonDecimal, compact bool) xip.Flags {
	var f xip.Flags
	if port {
		f |= xip.AllowPort
	}
	if zone {
		f |= xip.AllowZone
	}
	if nonDecimal {
		f |= xip.AllowNonDecimal
	}
	if compact {
		f |= xip.AllowCompact
	}
	return f
}

// variantName 返回区间的表示形式名称。
func variantName(r xip.Range) string {
	switch r.(type) {
	case *xip.StartEnd:
		return "startend"
	case *xip.Subnet:
		return "subnet"
	case *xip.Pattern:
		return "pattern"
	case *xip.Compact:
		return "compact"
	default:
		return "unknown"
	}
}

// printJSON 以缩进 JSON 输出到 stdout。
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatCounts 以 "键=值" 形式按键排序拼接计数。
func formatCounts(m map[string]int) string {
	if len(m) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		parts = append(parts, fmt.Sprintf("%s=%d", k, m[k]))
	}
	return strings.Join(parts, " ")
}

// setupSignalHandler 设置信号处理。
// 设计决策: 第一次信号优雅取消，第二次信号强制退出（退出码 130 = 128 + SIGINT）。
// 当命令阻塞时，用户可通过再次 Ctrl+C 强制退出。
func setupSignalHandler(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel() // 第一次信号: 优雅取消

		<-sigCh
		signal.Stop(sigCh) // 回收订阅
		os.Exit(130)       // 第二次信号: 强制退出
	}()
}
