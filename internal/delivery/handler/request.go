package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"account-service/internal/application/command"
)

// otpValue accepts the code as a JSON string or number.
type otpValue string

func (v *otpValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = otpValue(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = otpValue(n.String())
	return nil
}

type verifyOTPRequest struct {
	Email string   `json:"email" form:"email"`
	OTP   otpValue `json:"otp" form:"otp"`
}

func (r verifyOTPRequest) command() *command.VerifyOTPCommand {
	return &command.VerifyOTPCommand{Email: r.Email, OTP: string(r.OTP)}
}

// bindProfileUpdate distinguishes an absent field from an empty one for both
// JSON and form bodies.
func bindProfileUpdate(c echo.Context, cmd *command.UpdateUserCommand) error {
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return (&echo.DefaultBinder{}).BindBody(c, cmd)
	}

	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if values, ok := form["name"]; ok && len(values) > 0 {
		name := values[0]
		cmd.Name = &name
	}
	if values, ok := form["email"]; ok && len(values) > 0 {
		email := values[0]
		cmd.Email = &email
	}
	return nil
}
