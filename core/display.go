package core

// Prices 是价格推导结果，金额均为展示币种、两位小数。
type Prices struct {
	Display  float64
	Original *float64 // 仅在有更低折扣价时存在
	Rental   *float64 // 仅在租赁场景存在
}

// DisplayItem 是每次请求重新计算的展示视图，不落库。
type DisplayItem struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Brand           string   `json:"brand"`
	ListPrice       float64  `json:"list_price"`
	DiscountedPrice *float64 `json:"discounted_price,omitempty"`
	Rating          float64  `json:"rating"`
	BaseColor       string   `json:"base_colour"`
	Color1          string   `json:"colour1,omitempty"`
	Color2          string   `json:"colour2,omitempty"`
	Gender          string   `json:"gender"`
	Category        Category `json:"category"`
	Image           string   `json:"image_url"`

	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	Size          string   `json:"size"`
	Rental        bool     `json:"is_rental"`
	RentalPrice   *float64 `json:"rental_price,omitempty"`
	Source        string   `json:"source"`

	// 用户发布的商品
	UserItem    bool          `json:"is_user_item"`
	SellerID    string        `json:"seller_id,omitempty"`
	Status      ListingStatus `json:"status,omitempty"`
	Sold        bool          `json:"is_sold"`
	Rented      bool          `json:"is_rented"`
	Description string        `json:"description,omitempty"`
}
