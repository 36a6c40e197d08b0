package domain

// SubjectType differentiates marketplace entity tokens from moderator tokens.
type SubjectType string

const (
	SubjectTypeEntity    SubjectType = "ENTITY"
	SubjectTypeModerator SubjectType = "MODERATOR"
)
