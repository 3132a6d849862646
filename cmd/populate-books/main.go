package main

import (
	"bookcatalog/cmd/populate-books/commands"
	"bookcatalog/lib/util/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext()
	defer cancel()
	commands.ExecuteContext(ctx)
}
