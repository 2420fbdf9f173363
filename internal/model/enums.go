package model

// PostStatus is the closed post lifecycle enumeration.
// Transitions are one-directional: scheduled -> publishing -> published | failed.
// Immediate publishes start at publishing.
type PostStatus string

const (
	PostStatusScheduled  PostStatus = "scheduled"
	PostStatusPublishing PostStatus = "publishing"
	PostStatusPublished  PostStatus = "published"
	PostStatusFailed     PostStatus = "failed"
)

func (s PostStatus) Terminal() bool {
	return s == PostStatusPublished || s == PostStatusFailed
}

func ValidPostStatuses() []string {
	return []string{
		string(PostStatusScheduled),
		string(PostStatusPublishing),
		string(PostStatusPublished),
		string(PostStatusFailed),
	}
}

type BoardPrivacy string

const (
	BoardPrivacyPublic BoardPrivacy = "PUBLIC"
	BoardPrivacySecret BoardPrivacy = "SECRET"
)
