package source

import (
	"context"
	"errors"
	"fmt"
)

// ErrSourceUnavailable 数据源暂不可用（网络失败、非 2xx、响应无法解析）
var ErrSourceUnavailable = errors.New("source unavailable")

// Adapter 数据源适配器：一个关键词 -> 有序的原始文本片段
//
// 没有命中时返回空切片和 nil；任何获取或解析失败都必须返回包裹了
// ErrSourceUnavailable 的错误，便于调度方按 (关键词, 数据源) 隔离失败。
// 实现不得修改共享状态，需支持并发调用。
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, keyword string) ([]string, error)
}

func unavailable(source string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, source, err)
}
