// Package cache 提供 core.Cache 的几种存储实现：
// 进程内的 Otter、共享的 Redis、单机持久化的 SQLite，
// 以及为任意实现记录 OpenTelemetry 指标的 Instrumented 包装。
//
// 与 core.NewCacheAdapter 组合即可作为公众号客户端的缓存适配器。
package cache
