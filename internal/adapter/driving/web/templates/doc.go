// Package templates holds the templ components that render the admin
// dashboard's HTML. Edit the .templ sources and run `go tool templ generate`.
package templates
