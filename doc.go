// Package vitrine 是商品目录的个性化取页引擎。
//
// 设计要点：
// - Pipeline-first: 取数通过 Node 串联（Recall → Filter → Rank → ReRank）
// - Labels-first: labels 全链路透传（召回来源、相似参照、排序分、混合来源），便于解释与观测
// - 降级优先: 个性化失败回退冷启动，冷启动失败返回空页，只有入参错误会报错
//
// 入口见 engine.Engine.GetPage；HTTP 接口见 api，服务进程见 cmd/vitrine。
package vitrine

import "github.com/rushteam/vitrine/pipeline"

// 轻量 facade：便于直接 import 根包使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
