package routes

const uuidPattern = "[0-9a-fA-F-]{36}"

const (
	// Health
	Health = "/health"
	Root   = "/"

	// Properties (public reads, owner writes)
	Properties                = "/api/v1/properties/"
	PropertiesSearch          = "/api/v1/properties/search/"
	PropertyByID              = "/api/v1/properties/{id:" + uuidPattern + "}/"
	PropertyCheckAvailability = "/api/v1/properties/{id:" + uuidPattern + "}/check_availability/"
	PropertyImages            = "/api/v1/properties/{id:" + uuidPattern + "}/images/"
	PropertyImageByID         = "/api/v1/properties/{id:" + uuidPattern + "}/images/{imageID:" + uuidPattern + "}/"

	// Bookings (caller-scoped)
	Bookings    = "/api/v1/bookings/"
	BookingByID = "/api/v1/bookings/{id:" + uuidPattern + "}/"

	// Reviews
	Reviews    = "/api/v1/reviews/"
	ReviewByID = "/api/v1/reviews/{id:" + uuidPattern + "}/"

	// Catalog (admin writes)
	Categories   = "/api/v1/categories/"
	CategoryByID = "/api/v1/categories/{id:" + uuidPattern + "}/"
	Amenities    = "/api/v1/amenities/"
	AmenityByID  = "/api/v1/amenities/{id:" + uuidPattern + "}/"

	// Accounts
	Users            = "/api/v1/users/"
	UsersMe          = "/api/v1/users/me/"
	UserAccounts     = "/api/v1/useraccounts/"
	UserAccountsByID = "/api/v1/useraccounts/{id:" + uuidPattern + "}/"
)
