// Package photostream is a photo sharing backend: account registration
// with email verification, JWT auth, photo uploads with tags, comments,
// and ratings.
//
// Tokens:
//   - TokenService issues three scoped JWTs: access tokens carry the
//     user's role, refresh tokens mint new access tokens without being
//     rotated, and verification tokens confirm email addresses. Decode
//     rejects a valid token presented outside its scope, so a refresh
//     token can never authorize a request.
//
// Roles:
//   - Every user carries a Role (user, moderator, admin). The first
//     account ever registered becomes admin. Route gates match roles
//     exactly; the AtLeast hierarchy applies only to content
//     moderation, where moderators and admins may edit or remove other
//     users' photos and comments.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther and
//     the photo controllers to describe login, registration, upload,
//     and moderation events. Sinks run best-effort (errors are logged)
//     so you can forward to a database or queue without blocking
//     requests.
package photostream
