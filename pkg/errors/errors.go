package errors

import "errors"

// 跨模块共享的哨兵错误。各 service 自己的业务错误仍定义在各自文件中。
var (
	// ErrCourseNotFound 课程在先修关系图中不存在
	ErrCourseNotFound = errors.New("课程不存在")
)
