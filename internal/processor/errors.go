package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	ErrExtractTextFailed = errors.New("提取简历文本失败")
	ErrResolveJDFailed   = errors.New("解析岗位描述失败")
	ErrStoreFileFailed   = errors.New("上传文件到对象存储失败")
	ErrPersistFailed     = errors.New("评估结果落库失败")
)

// AnalyzeError 包含详细错误信息的自定义错误
type AnalyzeError struct {
	Filename string
	Op       string
	BaseErr  error
	Detail   string
}

func (e *AnalyzeError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, 文件:%s): %s", e.BaseErr, e.Op, e.Filename, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, 文件:%s)", e.BaseErr, e.Op, e.Filename)
}

func (e *AnalyzeError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *AnalyzeError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数
func NewExtractError(filename, detail string) error {
	return &AnalyzeError{
		Filename: filename,
		Op:       "extract",
		BaseErr:  ErrExtractTextFailed,
		Detail:   detail,
	}
}

func NewResolveJDError(filename, detail string) error {
	return &AnalyzeError{
		Filename: filename,
		Op:       "resolve_jd",
		BaseErr:  ErrResolveJDFailed,
		Detail:   detail,
	}
}

func NewStoreError(filename, detail string) error {
	return &AnalyzeError{
		Filename: filename,
		Op:       "store",
		BaseErr:  ErrStoreFileFailed,
		Detail:   detail,
	}
}

func NewPersistError(filename, detail string) error {
	return &AnalyzeError{
		Filename: filename,
		Op:       "persist",
		BaseErr:  ErrPersistFailed,
		Detail:   detail,
	}
}
