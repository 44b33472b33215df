// Package manager 维护受支持包管理器的注册表。
//
// 每个包管理器位于独立子包，在 init() 中通过 MustRegister 声明自身的缓存目录探测逻辑；
// 调用方通过空白导入启用子包，再以 Resolve(Type) 查询。
package manager
