package main

import (
	"context"

	"senate-lobbyist-source/cmd/lobbyistd/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
