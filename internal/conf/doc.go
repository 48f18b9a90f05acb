// Package conf 加载和监视命名 IP 区间组的规则文件。
//
// 规则文件是一份 YAML 或 JSON 文档（按扩展名识别），声明若干命名组，
// 每组包含区间文本（按全局 flags 解析）或显式起止地址对：
//
//	flags: [compact]
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
//
// # 加载语义
//
// 加载分两层：文件层（读取、语法解析、反序列化、flags 解析）失败会使
// Load/Reload 返回错误；条目层（单条区间文本或地址对解析）失败不会，
// 通过 Validate/Compile 以 [Issue] 列表报告，可用 errors.Is 匹配
// xip 哨兵错误定位具体原因。坏条目不影响同组其余条目。
//
// # 热重载
//
// Watch 基于 fsnotify 监视规则文件所在目录（兼容编辑器原子写入模式），
// 内置防抖；变更后自动 Reload 并重新校验，结果经回调送出。
// 重载失败时旧规则保持生效。
package conf
