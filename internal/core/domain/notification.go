package domain

// NotificationVariant selects how a notification is presented
type NotificationVariant string

const (
	NotificationDefault     NotificationVariant = "default"
	NotificationDestructive NotificationVariant = "destructive"
)

// Notification is a dismissible, user-visible message (a toast)
type Notification struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Variant     NotificationVariant `json:"variant"`
	DurationMs  int                 `json:"durationMs,omitempty"`
}

// ContentUnavailableNotification is raised when the page falls back to
// cached content
func ContentUnavailableNotification() Notification {
	return Notification{
		Title:       "Content unavailable",
		Description: "Showing cached defaults while the latest content is unreachable.",
		Variant:     NotificationDestructive,
	}
}
