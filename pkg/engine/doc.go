// Package engine is the composition root of recipebot. It loads
// configuration, resolves the configured model identifier to a completion
// provider, and assembles the Dispatcher that frontends talk to.
package engine
