package command

type LoginUserCommand struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type LoginUserCommandResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	// UserId and Email are recorded in the session by the delivery layer.
	UserId string `json:"-"`
	Email  string `json:"-"`
}
