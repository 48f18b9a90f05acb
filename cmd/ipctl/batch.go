package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"

	"github.com/omeyang/ipkit/pkg/xip"
)

// 批处理解析缓存参数。ACL 导出文件中重复条目很常见，
// 带过期的 LRU 让重复条目命中同一个已分类的区间实例。
const (
	batchCacheSize = 4096
	batchCacheTTL  = time.Minute
)

// batchEntry 批处理输入中的一个有效行。
type batchEntry struct {
	line int // 行号，从 1 开始
	text string
}

// batchResult 单条区间的处理结果。
type batchResult struct {
	entry  batchEntry
	rng    xip.Range
	err    error
	cached bool
}

// batchSummary 批处理汇总。
type batchSummary struct {
	RunID     string         `json:"run_id"`
	Total     int            `json:"total"`
	OK        int            `json:"ok"`
	Failed    int            `json:"failed"`
	CacheHits int            `json:"cache_hits"`
	Families  map[string]int `json:"families"`
	Types     map[string]int `json:"types"`
	Elapsed   string         `json:"elapsed"`
}

// cmdBatch 批量解析并分类区间。
// 设计决策: 坏条目不中断批处理，逐条记入日志并计入 Failed；
// 存在坏条目时整体返回退出码 1，便于在流水线中做质量门禁。
func cmdBatch(ctx context.Context, logger *slog.Logger, path string, jobs int, flags xip.Flags, jsonOut bool) error {
	entries, err := readBatchLines(path)
	if err != nil {
		return err
	}

	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	runID := uuid.NewString()
	start := time.Now()
	logger.Info("批处理开始", "run_id", runID, "file", path, "entries", len(entries), "jobs", jobs)

	cache := expirable.NewLRU[string, xip.Range](batchCacheSize, nil, batchCacheTTL)
	var cacheHits atomic.Int64

	results := make([]batchResult, len(entries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, entry := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			res := batchResult{entry: entry}
			if r, ok := cache.Get(entry.text); ok {
				res.rng, res.cached = r, true
				cacheHits.Add(1)
			} else if r, pErr := xip.Parse(entry.text, flags); pErr != nil {
				res.err = pErr
			} else {
				res.rng = r
				cache.Add(entry.text, r)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	summary := summarize(runID, results, int(cacheHits.Load()), time.Since(start))

	for _, res := range results {
		if res.err != nil {
			logger.Warn("条目解析失败",
				"run_id", runID, "line", res.entry.line, "entry", res.entry.text, "error", res.err)
		}
	}

	logger.Info("批处理完成", "run_id", runID, "total", summary.Total, "ok", summary.OK,
		"failed", summary.Failed, "cache_hits", summary.CacheHits, "elapsed", summary.Elapsed)

	if jsonOut {
		if err := printJSON(summary); err != nil {
			return err
		}
	} else {
		printSummary(summary)
	}

	if summary.Failed > 0 {
		return &exitError{code: 1}
	}
	return nil
}

// readBatchLines 读取批处理输入，跳过空行和 '#' 注释行。
// path 为 "-" 时读取 stdin。
func readBatchLines(path string) ([]batchEntry, error) {
	var reader io.Reader
	if path == "-" {
		reader = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		reader = f
	}

	var entries []batchEntry
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		entries = append(entries, batchEntry{line: line, text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取 %s: %w", path, err)
	}

	return entries, nil
}

// summarize 汇总批处理结果，按家族与 IANA 分类计数。
func summarize(runID string, results []batchResult, cacheHits int, elapsed time.Duration) batchSummary {
	s := batchSummary{
		RunID:     runID,
		Total:     len(results),
		CacheHits: cacheHits,
		Families:  make(map[string]int),
		Types:     make(map[string]int),
		Elapsed:   elapsed.Round(time.Millisecond).String(),
	}

	for _, res := range results {
		if res.err != nil {
			s.Failed++
			continue
		}
		s.OK++
		s.Families[res.rng.Family().String()]++
		s.Types[res.rng.Type().String()]++
	}

	return s
}

// printSummary 以文本形式输出汇总。
func printSummary(s batchSummary) {
	fmt.Printf("运行: %s\n", s.RunID)
	fmt.Printf("总数: %d  成功: %d  失败: %d  缓存命中: %d  耗时: %s\n",
		s.Total, s.OK, s.Failed, s.CacheHits, s.Elapsed)
	fmt.Printf("家族: %s\n", formatCounts(s.Families))
	fmt.Printf("分类: %s\n", formatCounts(s.Types))
}
