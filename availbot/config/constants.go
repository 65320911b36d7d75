package config

import "time"

// UI and display constants
const (
	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00

	// Poll embed colors
	PollColor     = 0x00FF00
	TestPollColor = 0xFFFF00

	PollsPerHistoryPage = 3
)

// Poll constants
const (
	// MaxPollOptions is the number of reaction slots Discord polls get here.
	MaxPollOptions = 7

	// LiveMessageRetention is how many real poll messages stay in the channel.
	LiveMessageRetention = 2

	// PollRowRetention is how many poll rows are kept per guild in storage.
	PollRowRetention = 3

	// DisplayTimezone is the zone used for the poll date label, independent
	// of the per-guild schedule timezone.
	DisplayTimezone = "Europe/Sofia"

	DefaultPollHour   = 8
	DefaultPollMinute = 0
	DefaultTimezone   = "UTC"
)

// PollEmojis is the fixed reaction palette. Option lists are paired with it
// positionally at publish time, so a config can never exceed it.
var PollEmojis = [MaxPollOptions]string{"✅", "🌅", "☀️", "🌙", "🌃", "🤔", "❌"}

// Database and timeout constants
const (
	DefaultQueryTimeout = 30 * time.Second
	DeliveryTimeout     = 10 * time.Second
	CommandTimeout      = 10 * time.Second
)
