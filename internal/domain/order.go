package domain

import "time"

// OrderStatus — статус заказа.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderPaid       OrderStatus = "paid"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

// PurchasedStatuses — статусы заказов, которые считаются покупкой.
var PurchasedStatuses = []OrderStatus{OrderPaid, OrderProcessing, OrderShipped, OrderDelivered}

// IsPurchase сообщает, считается ли заказ в этом статусе совершённой покупкой.
func (s OrderStatus) IsPurchase() bool {
	for _, st := range PurchasedStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// PurchaseLine — строка заказа в статусе покупки.
type PurchaseLine struct {
	ProductID int64
	Quantity  int64
	OrderedAt time.Time
}
