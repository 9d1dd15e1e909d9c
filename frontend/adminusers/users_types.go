package adminusers

type UserView struct {
	ID            int64   `json:"id" bun:"id"`
	Username      string  `json:"username" bun:"username"`
	Role          string  `json:"role" bun:"role"`
	AuthGroupID   *int64  `json:"authGroupId" bun:"auth_group_id"`
	AuthGroupName *string `json:"authGroupName" bun:"auth_group_name"`
}

type CreateUserInput struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	AuthGroupID *int64 `json:"authGroupId"`
}

type UpdateUserInput struct {
	Role        *string `json:"role"`
	AuthGroupID *int64  `json:"authGroupId"`
	Password    *string `json:"password"`
}
