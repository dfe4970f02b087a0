package handlers

// AppHandlers holds every HTTP handler of the application.
type AppHandlers struct {
	AuthHandler       *AuthHandler
	ProfileHandler    *ProfileHandler
	ProductHandler    *ProductHandler
	OrderHandler      *OrderHandler
	DiscountHandler   *DiscountHandler
	MediaAssetHandler *MediaAssetHandler
	PaymentHandler    *PaymentHandler
	FileHandler       *FileHandler
}
