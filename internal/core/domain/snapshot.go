package domain

import "time"

// Snapshot is the prefetched copy of the CMS data baked into a deploy.
// Content and Settings are nil when the prefetch could not reach the API.
type Snapshot struct {
	Content   *Content       `json:"content"`
	Settings  *SettingsPatch `json:"settings"`
	FetchedAt time.Time      `json:"fetchedAt"`
}

// HasData reports whether the snapshot carries anything usable
func (s *Snapshot) HasData() bool {
	return s != nil && (s.Content != nil || !s.Settings.IsEmpty())
}
