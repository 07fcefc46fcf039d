package main

import (
	"context"

	"grocerytracker/cmd/tracker/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
