// Command hytale-login drives the OAuth device-flow login this game
// server's daemon uses, and inspects or clears the resulting credential
// store.
package main

import "github.com/hytalecompat/gameserver/cmd/hytale-login/commands"

func main() {
	commands.Execute()
}
