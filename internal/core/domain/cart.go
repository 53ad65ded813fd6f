package domain

import "time"

type CartItem struct {
	ID        int64
	UserUID   string
	ProductID int64
	ImgURL    string
	Quantity  int
	Price     *float64
	AddedAt   time.Time
}

// CartItemPatch is a partial cart item update. Nil fields are left as is.
//
// The bounds follow the cart_items column types: quantity is INTEGER and
// price is NUMERIC(10, 2).
type CartItemPatch struct {
	Quantity *int     `validate:"omitnil,gte=0,lte=2147483647"`
	Price    *float64 `validate:"omitnil,gte=0,lte=99999999.99"`
}

func (p CartItemPatch) Empty() bool {
	return p.Quantity == nil && p.Price == nil
}

type CartItemEventType string

const (
	CartItemUpdated CartItemEventType = "updated"
	CartItemDeleted CartItemEventType = "deleted"
)

type CartItemEvent struct {
	EventID    string
	Type       CartItemEventType
	OccurredAt time.Time
	Item       CartItem
}
