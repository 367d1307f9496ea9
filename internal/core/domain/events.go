package domain

// Topic names an in-process broadcast channel
type Topic string

const (
	// TopicContentUpdated carries a Content payload
	TopicContentUpdated Topic = "cms:content-updated"

	// TopicSettingsUpdated carries a *SettingsPatch payload
	TopicSettingsUpdated Topic = "cms:settings-updated"
)

// Topics lists every known topic
var Topics = []Topic{TopicContentUpdated, TopicSettingsUpdated}

// IsValid returns true if this is a known topic
func (t Topic) IsValid() bool {
	switch t {
	case TopicContentUpdated, TopicSettingsUpdated:
		return true
	default:
		return false
	}
}
