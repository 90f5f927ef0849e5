package auth

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ErrEmailTaken is returned when signup hits an existing email.
var ErrEmailTaken = goerrors.New("email already registered", goerrors.CategoryConflict).
	WithTextCode("EMAIL_TAKEN").
	WithCode(goerrors.CodeConflict)

// ErrUsernameTaken is returned when signup hits an existing username.
var ErrUsernameTaken = goerrors.New("username is already taken", goerrors.CategoryConflict).
	WithTextCode("USERNAME_TAKEN").
	WithCode(goerrors.CodeConflict)

// ErrInvalidCredentials collapses "no such user" and "wrong password" into a
// single outcome so the login path cannot be used for identifier enumeration.
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS").
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidRefreshToken is returned when a refresh token is unknown or expired.
var ErrInvalidRefreshToken = goerrors.New("invalid or expired refresh token", goerrors.CategoryAuth).
	WithTextCode("INVALID_REFRESH_TOKEN").
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidResetToken is returned when a password reset token is unknown,
// already consumed, or expired.
var ErrInvalidResetToken = goerrors.New("invalid or expired reset token", goerrors.CategoryAuth).
	WithTextCode("INVALID_RESET_TOKEN").
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidOrExpiredToken is returned when a single use token is unknown,
// already consumed, or expired.
var ErrInvalidOrExpiredToken = goerrors.New("invalid or expired token", goerrors.CategoryBadInput).
	WithTextCode("INVALID_TOKEN").
	WithCode(goerrors.CodeBadRequest)

// ErrUserNotFound is returned when a flow references a user that no longer exists.
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryBadInput).
	WithTextCode("USER_NOT_FOUND").
	WithCode(goerrors.CodeBadRequest)

// ErrAlreadyVerified is returned on a verification resend for a verified user.
var ErrAlreadyVerified = goerrors.New("user is already verified", goerrors.CategoryBadInput).
	WithTextCode("ALREADY_VERIFIED").
	WithCode(goerrors.CodeBadRequest)

// ErrNotPendingVerification is returned when email verification runs against
// an account outside the PENDING_VERIFICATION state.
var ErrNotPendingVerification = goerrors.New("user is not pending verification", goerrors.CategoryBadInput).
	WithTextCode("NOT_PENDING_VERIFICATION").
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidCurrentPassword is returned by the change password flow when the
// supplied current password does not match.
var ErrInvalidCurrentPassword = goerrors.New("invalid current password", goerrors.CategoryBadInput).
	WithTextCode("INVALID_CURRENT_PASSWORD").
	WithCode(goerrors.CodeBadRequest)

// ErrForbidden is the authorization engine's deny outcome.
var ErrForbidden = goerrors.New("you do not have permission to access this resource", goerrors.CategoryAuthz).
	WithTextCode("FORBIDDEN").
	WithCode(goerrors.CodeForbidden)

// ErrSigning is returned when the access token signer is unavailable.
var ErrSigning = goerrors.New("failed to sign access token", goerrors.CategoryInternal).
	WithTextCode("SIGNING_ERROR").
	WithCode(goerrors.CodeInternal)

// ErrNoEmptyString rejects empty secrets passed to the password hasher.
var ErrNoEmptyString = goerrors.New("value must not be empty", goerrors.CategoryBadInput).
	WithTextCode("EMPTY_VALUE").
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the bcrypt mismatch outcome.
var ErrMismatchedHashAndPassword = goerrors.New("credentials do not match", goerrors.CategoryAuth).
	WithTextCode("CREDENTIAL_MISMATCH").
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is surfaced when a bearer access token is past expiry.
var ErrTokenExpired = goerrors.New("authentication token expired", goerrors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is surfaced when a bearer access token cannot be parsed.
var ErrTokenMalformed = goerrors.New("invalid authentication token", goerrors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED").
	WithCode(goerrors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// MapToHTTPStatus translates a domain error into the transport status code
// used by the boundary layer: Conflict 409, BadInput/Validation 400,
// Auth 401, Authz 403, everything else 500.
func MapToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return http.StatusInternalServerError
	}

	switch richErr.Category {
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
