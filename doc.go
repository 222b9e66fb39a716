// Package persokit 是一个电商落地页个性化工具包（Personalization Kit）。
//
// 设计要点：
// - Snapshot-first: 训练产物整体打包为不可变快照，原子发布，查询路径无锁
// - 分层回退: 协同过滤 → 人群近邻 → 上下文启发 → 聚类先验 → 硬兜底，逐级降级永不失败
// - Pipeline 服务路径: 召回 → 过滤 → 补足 → 重排 通过 Node 串联，可插拔扩展
package persokit

import "github.com/rushteam/persokit/pipeline"

// 轻量 facade：便于用户直接 import "persokit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindBackfill    = pipeline.KindBackfill
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
