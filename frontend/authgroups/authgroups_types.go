package authgroups

type GroupView struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

type CreateGroupInput struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

type UpdateGroupInput struct {
	Name        *string   `json:"name,omitempty"`
	Permissions *[]string `json:"permissions,omitempty"`
}
