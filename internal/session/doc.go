// package session holds the bearer credential for the lifetime of the process.
//
// The credential is captured once from the login redirect fragment, read by every
// component that issues authenticated calls and cleared on authentication failure.
// It is never refreshed: expiry forces a new login.
package session
