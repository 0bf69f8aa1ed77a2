package dataset

import "github.com/jekabolt/ecomm-insights/internal/source"

// Source column names.
const (
	colOrderID          = "order_id"
	colCustomerID       = "customer_id"
	colPurchasedAt      = "order_purchase_timestamp"
	colDeliveredAt      = "order_delivered_customer_date"
	colEstimatedAt      = "order_estimated_delivery_date"
	colProductID        = "product_id"
	colPrice            = "price"
	colPaymentType      = "payment_type"
	colPaymentValue     = "payment_value"
	colCustomerUniqueID = "customer_unique_id"
	colCustomerState    = "customer_state"
	colCategory         = "product_category_name"
	colCategoryEnglish  = "product_category_name_english"
)

// Columns declares the only columns read from each table.
var Columns = map[source.Table][]string{
	source.TableOrders:      {colOrderID, colCustomerID, colPurchasedAt, colDeliveredAt, colEstimatedAt},
	source.TableItems:       {colOrderID, colProductID, colPrice},
	source.TablePayments:    {colOrderID, colPaymentType, colPaymentValue},
	source.TableCustomers:   {colCustomerID, colCustomerUniqueID, colCustomerState},
	source.TableProducts:    {colProductID, colCategory},
	source.TableTranslation: {colCategory, colCategoryEnglish},
}
