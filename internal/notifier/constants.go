package notifier

// Discord formatting constants
const (
	DiscordUsername   = "pricefeed"
	SuccessEmbedColor = 0x5CB85C
	ErrorEmbedColor   = 0xD9534F
	WarningEmbedColor = 0xF0AD4E
	InfoEmbedColor    = 0x5BC0DE
)

// Discord embed limits
const (
	maxEmbedTitleLength       = 256
	maxEmbedDescriptionLength = 4096
	maxEmbedFields            = 25
	maxFieldNameLength        = 256
	maxFieldValueLength       = 1024
	maxFooterTextLength       = 2048
	maxEmbedsPerMessage       = 10
	maxContentLength          = 2000
)

// MaxItemErrorLength caps an item's error text inside a field.
const MaxItemErrorLength = 200
