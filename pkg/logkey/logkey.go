package logkey

// Common keys for structured log attributes so grepping logs stays consistent
// across packages.
const (
	TraceID = "Trace ID"
	ERROR   = "Error"
	UserID  = "UserID"
	ItemID  = "ItemID"
	CartID  = "CartID"
	OrderID = "OrderID"
)
