// Package cookie adapts net/http responses to the goSession.CookieSink
// contract.
package cookie
