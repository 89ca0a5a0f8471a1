package core

// RetrievalRequest 是一次取页请求。
type RetrievalRequest struct {
	UserID   string
	Feed     FeedContext
	Page     int
	PageSize int

	// Style 非空时排序混入问卷分
	Style *StyleProfile

	// Plain 为 true 时跳过个性化，直接按评分窗口取数
	Plain bool
}

// Validate 校验入参，返回 INVALID_INPUT。
func (r RetrievalRequest) Validate() error {
	if r.Page < 0 {
		return InvalidInput(ModuleEngine, "page must be >= 0")
	}
	if r.PageSize <= 0 {
		return InvalidInput(ModuleEngine, "page size must be > 0")
	}
	if r.Feed == nil {
		return InvalidInput(ModuleEngine, "feed is required")
	}
	return r.Feed.Validate()
}

// ContinuationSignal 表示调用方是否应继续请求下一页。
// 它只是启发式：本页返回了至少一个商品即为 true，不代表剩余数量。
type ContinuationSignal struct {
	more bool
}

// ContinueIf 根据本页的商品数构造信号。
func ContinueIf(returned int) ContinuationSignal {
	return ContinuationSignal{more: returned > 0}
}

// MayHaveMore 报告是否值得请求下一页。
func (c ContinuationSignal) MayHaveMore() bool { return c.more }

func (c ContinuationSignal) MarshalJSON() ([]byte, error) {
	if c.more {
		return []byte("true"), nil
	}
	return []byte("false"), nil
}

// 取数路径
const (
	PathPersonalized = "personalized"
	PathCold         = "cold"
	PathPlain        = "plain"
	PathListings     = "listings" // 混合 feed 中只有用户商品
	PathEmpty        = "empty"
)

// RetrievalResult 是一页结果。
type RetrievalResult struct {
	Items   []DisplayItem      `json:"items"`
	HasMore ContinuationSignal `json:"has_more"`
	Path    string             `json:"path"`
}
