// Package translation sends compiler diagnostics to a language-model HTTP
// endpoint and returns the translated text. The request body and the location
// of the answer in the response are configurable, so any chat-style API can be
// used. A circuit breaker stops hammering an endpoint that keeps failing.
package translation
