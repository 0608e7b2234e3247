package domain

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeError   NoticeLevel = "error"
)

// Notice is the user-facing message that accompanies a mutation.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}
