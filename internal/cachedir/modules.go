package cachedir

// 空白导入各包管理器子包，触发 init() 注册。
import (
	_ "github.com/any-hub/setup-vp/internal/manager/bun"
	_ "github.com/any-hub/setup-vp/internal/manager/npm"
	_ "github.com/any-hub/setup-vp/internal/manager/pnpm"
	_ "github.com/any-hub/setup-vp/internal/manager/yarn"
)
