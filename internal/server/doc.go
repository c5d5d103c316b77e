// Package server provides HTTP routing, middleware, the JSON table API and
// OAuth sign-in for the rolodex web service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [BasicRouter] uses [http.ServeMux] with method-qualified patterns, so
// handlers dispatch on [http.Request.Pattern] and read wildcards with
// [http.Request.PathValue].
//
// [Middleware] registered first runs outermost. [New] installs [Recovery],
// [RequestLogger] and the Prometheus [Metrics] middleware in that order.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib
// handler interface and adds routes, so a handler carries its own route
// table. [APIHandler], [OAuthHandler] and the browser UI in internal/web are
// all registered this way.
//
// # JSON API
//
// [APIHandler] exposes the contact store, the profile lookup and the session
// service under /api. Callers authenticate with "Authorization: Bearer" or
// the session cookie. Errors are returned as {"error", "code"} where code is
// one of the values produced by [shared.ErrorCode] and the status comes from
// [StatusFor].
//
// Sign-in and sign-up are rate limited per client address by [RateLimiter].
//
// # OAuth Sign-in
//
// [OAuthHandler] implements the OAuth2 authorization code flow for browsers.
// The state parameter is kept in a short-lived cookie and compared on the
// callback; the provider's userinfo email then identifies the account.
package server
