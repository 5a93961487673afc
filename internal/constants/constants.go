package constants

import "time"

// Paging
const (
	DefaultPageSize = 10
	MaxPageSize     = 50
	// MaxPage keeps (page-1)*page_size within an int32 OFFSET.
	MaxPage = (1<<31 - 1) / MaxPageSize
)

// Search ranker
const (
	SearchResultLimit     = 20
	SearchCacheTTL        = 2 * time.Minute
	SearchCachePrefix     = "search:"
	SearchReindexCronSpec = "30 3 * * *" // daily, off-peak
)

// Listing and catalog caches
const (
	PropertyListCacheTTL    = 1 * time.Minute
	PropertyListCachePrefix = "properties:"
	CatalogCacheTTL         = 10 * time.Minute
	CategoriesCacheKey      = "catalog:categories"
	AmenitiesCacheKey       = "catalog:amenities"
)

// Booking limits. total_price is NUMERIC(10,2).
const (
	MaxStayNights    = 365
	MaxBookingTotal  = 99999999.99
	MsgStayTooLong   = "A booking cannot be longer than 365 nights."
	MsgTotalTooLarge = "The total price for these dates is too large."
	MsgUnknownCaller = "Your account no longer exists."
)

// Availability responses
const (
	MsgDatesAvailable   = "Dates are available!"
	MsgDatesUnavailable = "These dates are not available."
	MsgDatesRequired    = "start_date and end_date are required."
	MsgDateFormat       = "Invalid date format. Use YYYY-MM-DD."
	MsgDateOrder        = "end_date must be after start_date."
)

// Auth
const (
	TokenIssuer = "Poof"
	RoleAdmin   = "admin"
)

const (
	UserAccountIDMaxLen = 10
	MinPasswordLength   = 8
)
