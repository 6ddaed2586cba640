package main

import "github.com/urfave/cli/v2"

// envVars returns names when env is true, nil otherwise.
func envVars(env bool, names ...string) []string {
	if !env {
		return nil
	}
	return names
}

// lookupString returns the value of a flag defined on several commands,
// preferring the innermost command that set it.
func lookupString(c *cli.Context, name string) string {
	for _, ctx := range c.Lineage() {
		if ctx.IsSet(name) {
			return ctx.String(name)
		}
	}
	return c.String(name)
}

// lookupBool is lookupString for boolean flags.
func lookupBool(c *cli.Context, name string) bool {
	for _, ctx := range c.Lineage() {
		if ctx.IsSet(name) {
			return ctx.Bool(name)
		}
	}
	return c.Bool(name)
}
