package models

// DateLayout is the layout of a calendar day in timelines and filters.
const DateLayout = "2006-01-02"

// Sort keys accepted by transaction listings
const (
	SortByDatetime = "datetime"
	SortByAmount   = "amount"
	SortByName     = "name"
	SortByDivision = "division"
)

// File permissions
const (
	PermissionDataFile  = 0644
	PermissionDirectory = 0750
	PermissionReceipt   = 0640
)
