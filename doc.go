// Package auth provides the authentication and authorization core for a
// multi-tenant club platform: credential handling, token lifecycle, and a
// two-axis role decision engine, plus HTTP helpers to mount the flows.
//
// Token lifecycle:
//   - Access tokens are short-lived HS256 JWTs carrying a claims snapshot
//     (user id, username, account status, system role, member role). They are
//     validated statelessly by TokenService.ValidateAccessToken.
//   - Refresh, email verification, and password reset tokens are opaque
//     random values persisted by digest only. Consumption is atomic and
//     single-use: concurrent presentations of the same token succeed at most
//     once. Refresh tokens rotate on every use.
//
// Authorization:
//   - Authorize evaluates RouteRequirements against AccessClaims. The two
//     role axes (system role, member role) are checked independently and both
//     must pass; an axis with no declared roles passes vacuously. Public
//     requirements bypass authentication entirely.
//
// Account lifecycle:
//   - Users carry an AccountStatus persisted via Bun. AccountStateMachine
//     centralizes the transition graph and timestamp handling for admin and
//     user initiated status moves.
//
// Notification sinks:
//   - NotificationSink receives verification, reset, and security update
//     events emitted by the flows. Sinks run best-effort (errors are logged)
//     so email delivery never fails the triggering operation.
package auth
