package domain

// Settings mirrors the app-settings screen. Every field is persisted as a string.
type Settings struct {
	NotificationsEnabled bool              `json:"notificationsEnabled"`
	DataSaver            bool              `json:"dataSaver"`
	AutoBackup           bool              `json:"autoBackup"`
	Language             string            `json:"language"`
	LibraryVisibility    LibraryVisibility `json:"libraryVisibility"`
}

// DefaultSettings returns the values used before the user changes anything.
func DefaultSettings() Settings {
	return Settings{
		NotificationsEnabled: true,
		Language:             "en",
		LibraryVisibility:    LibraryPublic,
	}
}
