// ipctl 是 ipkit 的命令行工具，用于解析、检查和转换 IP 区间。
//
// 用法:
//
//	ipctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	--port           允许地址携带端口后缀（10.0.0.1:8080、[::1]:53）
//	--zone           允许 IPv6 地址携带 zone-id 后缀（fe80::1%eth0）
//	--non-decimal    允许十六进制/八进制点分段（0x1A、017）
//	--compact        允许紧凑区间写法（192.168.1-20）
//	-j, --json       以 JSON 输出结果
//	--log-level      日志级别 (debug/info/warn/error，默认 info)
//	--log-format     日志格式 (text/json，默认 text)
//	--log-file       日志文件路径（启用 lumberjack 轮转；默认输出到 stderr）
//
// 命令:
//
//	info <range>            查看区间详情（默认命令）
//	convert --to <t> <range> 转换区间表示（startend/cidr/pattern）
//	check <range> <addr>... 检查地址是否落在区间内
//	rdns <range>            输出区间的反向解析域
//	type <range>            输出区间的 IANA 分类
//	merge <range>...        合并多个区间为最小不相交集合
//	batch <file>            批量解析分类（并发 + 缓存，"-" 表示 stdin）
//	watch <rules>           监视规则文件并持续校验（Ctrl+C 退出）
//
// 退出码:
//
//	0: 命令执行成功（check 命令: 全部地址命中）
//	1: 命令执行失败（check 命令: 存在未命中地址；batch 命令: 存在坏条目）
//	2: 参数错误（未知转换目标、缺少必需参数、未知命令等）
//
// 示例:
//
//	ipctl 192.168.1.0/24                      # 查看区间详情
//	ipctl info --json 10.0.0.0-10.0.0.255     # JSON 输出
//	ipctl convert --to cidr 10.0.0.0-10.255.255.255
//	ipctl check 10.0.0.0/8 10.1.2.3 192.168.1.1
//	ipctl --compact batch ranges.txt          # 批量处理（允许紧凑写法）
//	ipctl watch rules.yaml                    # 监视规则文件
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "ipctl",
		Usage:   "IP 区间解析与转换工具",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "port",
				Usage: "允许地址携带端口后缀（10.0.0.1:8080、[::1]:53）",
			},
			&cli.BoolFlag{
				Name:  "zone",
				Usage: "允许 IPv6 地址携带 zone-id 后缀（fe80::1%eth0）",
			},
			&cli.BoolFlag{
				Name:  "non-decimal",
				Usage: "允许十六进制/八进制点分段（0x1A、017）",
			},
			&cli.BoolFlag{
				Name:  "compact",
				Usage: "允许紧凑区间写法（192.168.1-20）",
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "以 JSON 输出结果",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "日志级别 (debug/info/warn/error)",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "日志格式 (text/json)",
				Value: "text",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "日志文件路径（启用轮转；默认输出到 stderr）",
			},
		},
		Commands:       createCommands(),
		DefaultCommand: "info",
		Authors: []any{
			"ipkit Team",
		},
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，
		// 由 run() 统一处理退出码映射，确保与文档退出码契约一致。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			// ExitCoder 错误（如未知命令）的消息需在此输出，
			// 替代 HandleExitCoder 的默认 os.Exit 行为。
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
		Description: `ipctl 将 IP 区间在四种等价表示之间解析与转换：
起止对 (10.0.0.0-10.0.0.255)、CIDR (10.0.0.0/24)、
尾部通配符 (10.0.0.*) 与紧凑写法 (10.0.0-255，需 --compact)。

主要命令:
  info <range>               查看区间详情（表示/家族/IANA 分类/大小/反向域）
  convert --to <t> <range>   表示转换（cidr 要求区间恰为整块）
  check <range> <addr>...    成员检查（存在未命中 → 退出码 1）
  rdns <range>               反向解析域（in-addr.arpa / ip6.arpa）
  type <range>               IANA 特殊用途分类
  merge <range>...           合并为最小不相交起止对集合
  batch <file>               批量解析分类（--jobs 并发，LRU 缓存去重）
  watch <rules>              监视规则文件，变更后自动重载校验`,
	}
}

func run() int {
	app := createApp()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 设置信号处理
	setupSignalHandler(cancel)

	if err := app.Run(ctx, os.Args); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		// CLI 框架产生的参数错误（如未知 flag、未知命令）也返回退出码 2，
		// 与文档契约"参数错误 → 退出码 2"保持一致。
		if isCLIUsageError(err) {
			// ExitErrHandler 或 flag 解析器已向 stderr 输出错误详情，此处仅设置退出码
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}

	return 0
}
