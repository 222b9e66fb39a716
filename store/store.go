// Package store 提供画像/目录存储的两种实现：
// 内存实现用于测试与原型，Redis 实现用于生产部署。
// 两者都同时实现 core.ProfileStore 与 core.CatalogStore。
package store
