package server

import "errors"

const (
	// MinWeight / MaxWeight 权重取值范围
	MinWeight = 1
	MaxWeight = 10
)

var (
	// ErrNotFound 服务器不存在
	ErrNotFound = errors.New("validation server not found")
	// ErrDuplicateURL 同一URL只允许注册一次
	ErrDuplicateURL = errors.New("a server with this URL already exists")
	// ErrUnsafeURL URL指向内网/回环/元数据地址，禁止注册
	ErrUnsafeURL = errors.New("server URL is not a safe public endpoint")
	// ErrUnreachable 创建或更新时探活失败
	ErrUnreachable = errors.New("cannot connect to the validation server")
)

// ListFilter 注册表列表查询条件
type ListFilter struct {
	Search   string
	IsActive *bool
	Page     int
	Limit    int
}

func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 10
	}
}

func (f *ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}
