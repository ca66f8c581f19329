package domain

type ChangeAction string

const (
	ChangeActionAdd    ChangeAction = "add"
	ChangeActionUpdate ChangeAction = "update"
	ChangeActionDelete ChangeAction = "delete"
	ChangeActionSave   ChangeAction = "save"
)

func (a ChangeAction) Valid() bool {
	switch a {
	case ChangeActionAdd, ChangeActionUpdate, ChangeActionDelete, ChangeActionSave:
		return true
	default:
		return false
	}
}

// SchemaChangeLog is an append-only audit entry. Entries are never edited or removed individually;
// stores evict the oldest once their capacity is reached.
type SchemaChangeLog struct {
	ID           string       `json:"id"`
	Timestamp    int64        `json:"timestamp"`
	NodeType     string       `json:"nodeType"`
	Action       ChangeAction `json:"action"`
	PropertyName string       `json:"propertyName,omitempty"`
	Description  string       `json:"description"`
	ChangedBy    string       `json:"changedBy,omitempty"`
}

// ChangeLogInput is an entry minus the id and timestamp the store assigns.
type ChangeLogInput struct {
	NodeType     string       `json:"nodeType" binding:"required"`
	Action       ChangeAction `json:"action" binding:"required"`
	PropertyName string       `json:"propertyName,omitempty"`
	Description  string       `json:"description"`
	ChangedBy    string       `json:"changedBy,omitempty"`
}
