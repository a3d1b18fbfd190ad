// Package common holds the small set of enumerations shared by the
// grammar engine and its CLI collaborator. It is a package of its own,
// separate from css; css and cmd/cssparse import it.
package common

//go:generate go-enum -f=enums.go --marshal --names

// PropertySource identifies which kind of stylesheet contributed a
// property's current value. The grammar engine always sets it to
// PropertySourceUserAgent at parse time; reassigning it to user,
// author, animation or transition is a cascade concern, performed by
// code downstream of this module.
// ENUM(user-agent, user, author, animation, transition)
type PropertySource int
