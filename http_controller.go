package auth

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// usernamePattern excludes "@" so a username can never shadow an email in
// the login identifier lookup.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// MessageResponse is the generic JSON acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterAuthRoutes mounts the authentication API on the given router.
// Sign up, login, refresh, forgot, and reset are public; email verification
// and password change require a valid bearer token.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	guarded := Protected(controller.Auther.TokenService(), RouteRequirements{})

	app.Post(controller.Routes.SignUp, controller.SignUpPost).
		SetName("sign-up.post")
	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("sign-in.post")
	app.Post(controller.Routes.Refresh, controller.RefreshPost).
		SetName("token-refresh.post")

	app.Post(controller.Routes.VerifyEmail, guarded(controller.VerifyEmailPost)).
		SetName("email-verify.post")
	app.Post(controller.Routes.ResendVerification, guarded(controller.ResendVerificationPost)).
		SetName("email-resend.post")

	app.Post(controller.Routes.ForgotPassword, controller.ForgotPasswordPost).
		SetName("pwd-forgot.post")
	app.Post(controller.Routes.ResetPassword, controller.ResetPasswordPost).
		SetName("pwd-reset.post")
	app.Post(controller.Routes.ChangePassword, guarded(controller.ChangePasswordPost)).
		SetName("pwd-change.post")
}

type AuthControllerRoutes struct {
	SignUp             string
	Login              string
	Refresh            string
	VerifyEmail        string
	ResendVerification string
	ForgotPassword     string
	ResetPassword      string
	ChangePassword     string
}

type AuthController struct {
	Debug  bool
	Logger Logger
	Auther *Auther
	Routes *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

// WithControllerAuther sets the authentication service, required.
func WithControllerAuther(auther *Auther) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			SignUp:             "/auth/sign-up",
			Login:              "/auth/login",
			Refresh:            "/auth/refresh",
			VerifyEmail:        "/auth/email/verify",
			ResendVerification: "/auth/email/resend",
			ForgotPassword:     "/auth/forgot-password",
			ResetPassword:      "/auth/reset-password",
			ChangePassword:     "/auth/change-password",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Auther in auth controller...")
	}

	return c
}

// SignUpPayload is the registration request body.
type SignUpPayload struct {
	Email     string `form:"email" json:"email"`
	Username  string `form:"username" json:"username"`
	Password  string `form:"password" json:"password"`
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
}

// Validate will run validation rules
func (r SignUpPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Username, validation.Required, validation.Length(3, 50), validation.Match(usernamePattern)),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
		validation.Field(&r.FirstName, validation.Length(0, 200)),
		validation.Field(&r.LastName, validation.Length(0, 200)),
	)
}

func (a *AuthController) SignUpPost(ctx router.Context) error {
	payload := new(SignUpPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("sign up parse payload", "error", err)
		return WriteError(ctx, ErrNoEmptyString)
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	if a.Debug {
		fmt.Println("======= AUTH SIGN UP ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("===========================")
	}

	pair, err := a.Auther.SignUp(ctx.Context(), SignUpInput{
		Email:     payload.Email,
		Username:  payload.Username,
		Password:  payload.Password,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
	})
	if err != nil {
		a.Logger.Error("sign up failed", "error", err)
		return WriteError(ctx, err)
	}

	return ctx.JSON(fiber.StatusCreated, pair)
}

// LoginPayload carries the login identifier and password.
type LoginPayload struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Identifier, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return WriteError(ctx, ErrNoEmptyString)
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	pair, err := a.Auther.Login(ctx.Context(), payload.Identifier, payload.Password)
	if err != nil {
		return WriteError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, pair)
}

// RefreshPayload carries the opaque refresh token being rotated.
type RefreshPayload struct {
	RefreshToken string `form:"refresh_token" json:"refresh_token"`
}

// Validate will run validation rules
func (r RefreshPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

func (a *AuthController) RefreshPost(ctx router.Context) error {
	payload := new(RefreshPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("refresh parse payload", "error", err)
		return WriteError(ctx, ErrNoEmptyString)
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	pair, err := a.Auther.Refresh(ctx.Context(), payload.RefreshToken)
	if err != nil {
		return WriteError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, pair)
}

// VerifyEmailPayload carries the opaque verification token.
type VerifyEmailPayload struct {
	Token string `form:"token" json:"token"`
}

// Validate will run validation rules
func (r VerifyEmailPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
	)
}

func (a *AuthController) VerifyEmailPost(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, DefaultClaimsContextKey)
	if !ok {
		return WriteError(ctx, ErrTokenMalformed)
	}

	payload := new(VerifyEmailPayload)
	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("verify email parse payload", "error", err)
		return WriteError(ctx, ErrNoEmptyString)
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	userID, err := claims.UserUUID()
	if err != nil {
		return WriteError(ctx, ErrTokenMalformed)
	}

	pair, err := a.Auther.VerifyEmail(ctx.Context(), userID, payload.Token)
	if err != nil {
		return WriteError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, pair)
}

func (a *AuthController) ResendVerificationPost(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, DefaultClaimsContextKey)
	if !ok {
		return WriteError(ctx, ErrTokenMalformed)
	}

	userID, err := claims.UserUUID()
	if err != nil {
		return WriteError(ctx, ErrTokenMalformed)
	}

	if err := a.Auther.RequestEmailVerification(ctx.Context(), userID); err != nil {
		return WriteError(ctx, err)
	}

	return ctx.JSON(fiber.StatusAccepted, MessageResponse{
		Message: "verification email sent",
	})
}

// ForgotPasswordPayload carries the account email.
type ForgotPasswordPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r ForgotPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) ForgotPasswordPost(ctx router.Context) error {
	payload := new(ForgotPasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("forgot password parse payload", "error", err)
		return WriteError(ctx, ErrNoEmptyString)
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	if err := a.Auther.ForgotPassword(ctx.Context(), payload.Email); err != nil {
		// same acknowledgement for every outcome, the endpoint must not
		// disclose whether the email has an account
		a.Logger.Error("forgot password failed", "error", err)
	}

	return ctx.JSON(fiber.StatusAccepted, MessageResponse{
		Message: "if the email exists, a reset link has been sent",
	})
}

// ResetPasswordPayload carries the reset token and replacement password.
type ResetPasswordPayload struct {
	Token    string `form:"token" json:"token"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r ResetPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
	)
}

func (a *AuthController) ResetPasswordPost(ctx router.Context) error {
	payload := new(ResetPasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("reset password parse payload", "error", err)
		return WriteError(ctx, ErrNoEmptyString)
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	if a.Debug {
		fmt.Println("======= PASSWORD RESET ======")
		fmt.Println(print.MaybePrettyJSON(map[string]int{"token_len": len(payload.Token)}))
		fmt.Println("=============================")
	}

	pair, err := a.Auther.ResetPassword(ctx.Context(), payload.Password, payload.Token)
	if err != nil {
		return WriteError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, pair)
}

// ChangePasswordPayload carries the current password for the step-up check.
type ChangePasswordPayload struct {
	CurrentPassword string `form:"current_password" json:"current_password"`
}

// Validate will run validation rules
func (r ChangePasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
	)
}

func (a *AuthController) ChangePasswordPost(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, DefaultClaimsContextKey)
	if !ok {
		return WriteError(ctx, ErrTokenMalformed)
	}

	userID, err := claims.UserUUID()
	if err != nil {
		return WriteError(ctx, ErrTokenMalformed)
	}

	payload := new(ChangePasswordPayload)
	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("change password parse payload", "error", err)
		return WriteError(ctx, ErrNoEmptyString)
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	if err := a.Auther.ChangePassword(ctx.Context(), userID, payload.CurrentPassword); err != nil {
		return WriteError(ctx, err)
	}

	return ctx.JSON(fiber.StatusAccepted, MessageResponse{
		Message: "confirmation email sent",
	})
}
