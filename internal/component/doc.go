// Package component holds the schema extensions and code helpers shared by
// every firmware component: generic registration with the application and
// the restore behaviour of stateful components.
package component
