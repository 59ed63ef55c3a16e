package command

// UpdateUserCommand carries a partial profile update. Nil fields are left as
// they are.
type UpdateUserCommand struct {
	Id    string  `json:"-"`
	Name  *string `json:"name"`
	Email *string `json:"email"`
}
