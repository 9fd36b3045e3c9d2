package models

type DashboardStats struct {
	TotalOrders    int64                 `json:"totalOrders"`
	OrdersByStatus map[OrderStatus]int64 `json:"ordersByStatus"`
	TotalProducts  int64                 `json:"totalProducts"`
	TotalCustomers int64                 `json:"totalCustomers"`
}
