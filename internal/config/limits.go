package config

const (
	// MaxNodeNameLength is the maximum length for folder and file names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (names should be short and descriptive).
	MaxNodeNameLength = 255

	// MaxUsernameLength is the maximum length for display names.
	MaxUsernameLength = 64
)
