// Package services implements clients for the rolodex HTTP API.
//
// # Store Client
//
// [StoreClient] is the network side of the contact store. The CLI and the
// terminal UI use it wherever the server side uses the SQLite repositories:
//   - List, Create, Update and Delete satisfy the controller's contact store
//   - FullName satisfies the profile lookup
//   - Subscribe and Session satisfy the session gate
//
// # Sessions
//
// SignIn and SignUp persist the returned session as JSON at the configured
// session file (mode 0600) so later invocations reuse it. The token is sent
// as "Authorization: Bearer <token>". A 401 from the session endpoint clears
// the saved session, and SignOut always clears it.
//
// # Error Handling
//
// Non-2xx responses carry {"error", "code"}; the code is mapped back to the
// sentinel from the shared package with [shared.ErrorFromCode], so callers
// test errors with errors.Is exactly as they would against the local store.
// Transport failures wrap [shared.ErrAPIRequest].
package services
