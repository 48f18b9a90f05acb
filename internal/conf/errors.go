package conf

import "errors"

// 规则文件加载和解析相关错误。
var (
	// ErrEmptyPath 表示规则文件路径为空。
	ErrEmptyPath = errors.New("conf: empty rules path")

	// ErrUnsupportedFormat 表示不支持的规则文件格式。
	ErrUnsupportedFormat = errors.New("conf: unsupported rules format")

	// ErrLoadFailed 表示规则文件读取失败。
	ErrLoadFailed = errors.New("conf: failed to load rules")

	// ErrParseFailed 表示规则文件语法解析失败。
	ErrParseFailed = errors.New("conf: failed to parse rules")

	// ErrUnmarshalFailed 表示规则文件反序列化失败。
	ErrUnmarshalFailed = errors.New("conf: failed to unmarshal rules")

	// ErrUnknownFlag 表示 flags 列表中出现未知的解析开关名。
	ErrUnknownFlag = errors.New("conf: unknown parse flag")
)

// 监视相关错误。
var (
	// ErrNotFromFile 表示规则不是从文件加载的，无法重载或监视。
	ErrNotFromFile = errors.New("conf: rules not loaded from a file")

	// ErrNilCallback 表示监视回调为空。
	ErrNilCallback = errors.New("conf: nil watch callback")

	// ErrInvalidDebounce 表示防抖时间非法（必须为正）。
	ErrInvalidDebounce = errors.New("conf: debounce must be positive")

	// ErrWatchFailed 表示监视器创建失败。
	ErrWatchFailed = errors.New("conf: failed to watch rules")
)
